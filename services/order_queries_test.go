package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderDetails_NonAdminScopedToOwnOrders(t *testing.T) {
	svc, mock := newOrderService(t)

	// the user filter must be part of the query itself
	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = ? AND user_id = ?`)).
		WithArgs(int64(42), int64(777)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "order_date", "total_amount", "status", "delivery_address", "is_online_order"}))

	_, err := svc.GetOrderDetails(42, 777, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderDetails_AdminSeesAnyOrder(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = ?`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "order_date", "total_amount", "status", "delivery_address", "is_online_order"}).
			AddRow(42, 9, time.Now(), 300, StatusPending, "12 Main St", true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT oi.product_id, p.name, oi.quantity, oi.unit_price`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "quantity", "unit_price"}).
			AddRow(1, "Apples", 3, 100))

	order, err := svc.GetOrderDetails(42, 777, true)
	require.NoError(t, err)
	assert.Equal(t, int64(9), order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Apples", order.Items[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserOrders_GroupsItemsByOrder(t *testing.T) {
	svc, mock := newOrderService(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "order_date", "total_amount", "status", "delivery_address", "is_online_order",
		"product_id", "name", "quantity", "unit_price",
	}).
		AddRow(2, 9, now, 500, StatusPending, "addr", true, 1, "Apples", 3, 100).
		AddRow(2, 9, now, 500, StatusPending, "addr", true, 2, "Bread", 4, 50).
		AddRow(1, 9, now.Add(-time.Hour), 100, StatusDelivered, "addr", true, 1, "Apples", 1, 100)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE o.user_id = ?`)).
		WithArgs(int64(9)).
		WillReturnRows(rows)

	orders, err := svc.GetUserOrders(9)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(2), orders[0].ID)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, int64(300), orders[0].Items[0].Subtotal)
	assert.Equal(t, int64(200), orders[0].Items[1].Subtotal)

	assert.Equal(t, int64(1), orders[1].ID)
	require.Len(t, orders[1].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllOrders_IncludesUserInfo(t *testing.T) {
	svc, mock := newOrderService(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "order_date", "total_amount", "status", "delivery_address", "is_online_order",
		"username", "email", "phone_number",
		"product_id", "name", "quantity", "unit_price",
	}).
		AddRow(5, 9, now, 300, StatusPending, "addr", true, "alice", "alice@example.com", nil, 1, "Apples", 3, 100)

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users u ON o.user_id = u.id`)).
		WillReturnRows(rows)

	orders, err := svc.GetAllOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "alice", orders[0].Username)
	assert.Equal(t, "alice@example.com", orders[0].Email)
	require.Len(t, orders[0].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
