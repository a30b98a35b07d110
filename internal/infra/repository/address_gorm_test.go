package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddress() model.Address {
	now := time.Now()
	return model.Address{
		UserID: 7, Name: "Jane Doe", Line1: "1 Main St", City: "Springfield",
		State: "IL", PostalCode: "62701", Country: "US", CreatedAt: now, UpdatedAt: now,
	}
}

func TestAddressCreate_FirstBecomesDefault(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "addresses" WHERE user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "addresses" .*RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	got, err := r.Create(context.Background(), newAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.True(t, got.IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressCreate_SecondIsNotDefault(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "addresses" .*RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	a := newAddress()
	a.IsDefault = true // 呼び出し側の値は使わない
	got, err := r.Create(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 最初の1件が同時に2つ入ったら、負けた方は通常の住所として入れ直す
func TestAddressCreate_LosesDefaultRace(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "addresses"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_addresses_default"})
	mock.ExpectQuery(`INSERT INTO "addresses" .*RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	got, err := r.Create(context.Background(), newAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
	assert.False(t, got.IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressFindForUser_OtherUsersAddress(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.FindForUser(context.Background(), 8, 3)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressShippingSnapshot(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "line1", "line2", "city", "state", "postal_code", "country"}).
			AddRow(3, 7, "Jane Doe", "1 Main St", "Apt 4", "Springfield", "IL", "62701", "US"))

	got, err := r.ShippingSnapshot(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, 1 Main St, Apt 4, Springfield, IL 62701, US", got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressUpdate_ScopedToOwner(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectExec(`UPDATE "addresses" SET .*WHERE id = \$\d+ AND user_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	a := newAddress()
	a.ID = 3
	a.UserID = 8
	err := r.Update(context.Background(), a)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

// デフォルトを消したら一番古い住所が引き継ぐ
func TestAddressDelete_PromotesNextDefault(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "addresses" WHERE id = \$1 AND user_id = \$2.*RETURNING "is_default"`).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(true))
	mock.ExpectExec(`UPDATE addresses SET is_default = TRUE\s+WHERE id = \(SELECT id FROM addresses WHERE user_id = \$1 ORDER BY id ASC LIMIT 1\)`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 7, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressDelete_NonDefaultLeavesOthers(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 7, 4))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressDelete_OtherUsersAddress(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "addresses"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}))
	mock.ExpectRollback()

	err := r.Delete(context.Background(), 8, 3)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressSetDefault_ClearsThenSets(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "addresses" SET "is_default"=\$1.*WHERE user_id = \$\d+ AND id <> \$\d+ AND is_default = TRUE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "addresses" SET "is_default"=\$1.*WHERE id = \$\d+ AND user_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.SetDefault(context.Background(), 7, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

// 他人の住所なら外した分もロールバック
func TestAddressSetDefault_OtherUsersAddress(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewAddressGormRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "addresses" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "addresses" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := r.SetDefault(context.Background(), 8, 3)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
