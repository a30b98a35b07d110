package repository

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderUpdateStatus_ComparesCurrentStatus(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectExec(`UPDATE "orders" SET "status"=\$1,"updated_at"=\$2 WHERE .*id = \$3 AND status = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.UpdateStatus(context.Background(), 5, model.OrderStatusProcessing, model.OrderStatusShipped)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus_LostRace(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := r.UpdateStatus(context.Background(), 5, model.OrderStatusProcessing, model.OrderStatusShipped)
	assert.True(t, errors.Is(err, repo.ErrVersionConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderFindByID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewOrderGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindByID(context.Background(), 404)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	gdb, mock := newMockDB(t)
	tm := NewTxManagerGorm(gdb, testLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("order insert failed")
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		ok, err := r.Inventory().DecreaseStockIfEnough(context.Background(), 1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_Commits(t *testing.T) {
	gdb, mock := newMockDB(t)
	tm := NewTxManagerGorm(gdb, testLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "cart_items" WHERE user_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		return r.CartItems().DeleteByUserID(context.Background(), 3)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
