package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/models"
)

func newProductService(t *testing.T) (*ProductService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProductService(db, nil), mock
}

func productRow(id int64, name string, price int64, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "category_id", "price", "stock_quantity",
		"unit", "barcode", "image_url", "is_active", "created_at",
	}).AddRow(id, name, nil, 1, price, stock, nil, nil, nil, true, time.Now())
}

func TestUpdateProduct_PatchOnlyListedFields(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(productRow(3, "Apples", 100, 5))

	// only name and price appear in the statement
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET name = ?, price = ? WHERE id = ?`)).
		WithArgs("Green Apples", int64(120), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(productRow(3, "Green Apples", 120, 5))

	name := "Green Apples"
	price := int64(120)
	product, err := svc.Update(3, models.ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Green Apples", product.Name)
	assert.Equal(t, int64(120), product.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProduct_EmptyPatchRejected(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(productRow(3, "Apples", 100, 5))

	_, err := svc.Update(3, models.ProductPatch{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUpdateProduct_NegativePriceRejected(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(productRow(3, "Apples", 100, 5))

	price := int64(-10)
	_, err := svc.Update(3, models.ProductPatch{Price: &price})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = ?`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "category_id", "price", "stock_quantity",
			"unit", "barcode", "image_url", "is_active", "created_at",
		}))

	name := "x"
	_, err := svc.Update(404, models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProduct_RefusedWithActiveOrders(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN order_items oi ON o.id = oi.order_id`)).
		WithArgs(int64(3), StatusPending, StatusProcessing).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := svc.Delete(3)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_SoftDeletes(t *testing.T) {
	svc, mock := newProductService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM products WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN order_items oi ON o.id = oi.order_id`)).
		WithArgs(int64(3), StatusPending, StatusProcessing).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET is_active = FALSE WHERE id = ?`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
