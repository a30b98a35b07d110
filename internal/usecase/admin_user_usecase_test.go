package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminUserUsecase_ForceLogout(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditLogRepoMock)
	uc := usecase.NewAdminUserUsecase(users, audit)

	users.On("IncrementTokenVersion", mock.Anything, int64(7)).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionForceLogout && l.ResourceType == model.AuditResourceUser && l.ResourceID == 7
	})).Return(nil)

	require.NoError(t, uc.ForceLogout(context.Background(), admin, 7))
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_ForceLogout_UnknownUser(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditLogRepoMock)
	uc := usecase.NewAdminUserUsecase(users, audit)

	users.On("IncrementTokenVersion", mock.Anything, int64(404)).Return(repo.ErrNotFound)

	err := uc.ForceLogout(context.Background(), admin, 404)
	var nf *usecase.NotFoundError
	require.ErrorAs(t, err, &nf)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUserUsecase_List_RequiresAdmin(t *testing.T) {
	users := new(UserRepoMock)
	uc := usecase.NewAdminUserUsecase(users, new(AuditLogRepoMock))

	users.On("List", mock.Anything, 1, 20).Return([]model.User{{ID: 1}, {ID: 7}}, int64(2), nil)

	out, err := uc.List(context.Background(), admin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)

	_, err = uc.List(context.Background(), customer, 1, 20)
	var ae *usecase.AuthorizationError
	assert.ErrorAs(t, err, &ae)
}
