package repository

import (
	"context"
	"errors"
	"testing"

	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecreaseStockIfEnough_Decrements(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	// 条件付きUPDATE1文で減らす
	mock.ExpectExec(`UPDATE "products" SET .*"stock_count"=stock_count - \$\d+.*WHERE .*id = \$\d+ AND stock_count >= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := r.DecreaseStockIfEnough(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseStockIfEnough_NotEnough(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET .*stock_count >= `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.DecreaseStockIfEnough(context.Background(), 1, 46)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseStockIfEnough_DerivesInStock(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET "in_stock"=stock_count - \$\d+ > 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := r.DecreaseStockIfEnough(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncreaseStock_MissingProduct(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET .*stock_count \+ `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.IncreaseStock(context.Background(), 99, 2)
	assert.True(t, errors.Is(err, repo.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStock_ReturnsPrevious(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := NewInventoryGormRepository(gdb)

	mock.ExpectQuery(`SELECT "id","stock_count" FROM "products" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock_count"}).AddRow(1, 45))
	mock.ExpectExec(`UPDATE "products" SET "in_stock"=\$1,"stock_count"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	prev, err := r.SetStock(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(45), prev)
	require.NoError(t, mock.ExpectationsWereMet())
}
