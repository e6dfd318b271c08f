package services

import (
	"database/sql"
	"errors"
	"fmt"

	"store-service/models"
)

// GetUserOrders 返回指定用户的订单（含明细与商品名），按下单时间倒序
func (s *OrderService) GetUserOrders(userID int64) ([]models.Order, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.user_id, o.order_date, o.total_amount, o.status, o.delivery_address, o.is_online_order,
		        oi.product_id, p.name, oi.quantity, oi.unit_price
		 FROM orders o
		 JOIN order_items oi ON o.id = oi.order_id
		 JOIN products p ON oi.product_id = p.id
		 WHERE o.user_id = ?
		 ORDER BY o.order_date DESC, oi.id ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

// GetAllOrders 管理端视图：全部订单并附下单用户信息
func (s *OrderService) GetAllOrders() ([]models.OrderWithUser, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.user_id, o.order_date, o.total_amount, o.status, o.delivery_address, o.is_online_order,
		        u.username, u.email, u.phone_number,
		        oi.product_id, p.name, oi.quantity, oi.unit_price
		 FROM orders o
		 JOIN users u ON o.user_id = u.id
		 JOIN order_items oi ON o.id = oi.order_id
		 JOIN products p ON oi.product_id = p.id
		 ORDER BY o.order_date DESC, oi.id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*models.OrderWithUser)
	ordered := []int64{}
	for rows.Next() {
		var (
			o     models.Order
			addr  sql.NullString
			phone sql.NullString
			uname string
			email string
			it    models.OrderItem
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.Status, &addr, &o.IsOnlineOrder,
			&uname, &email, &phone,
			&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}

		cur, ok := byID[o.ID]
		if !ok {
			o.DeliveryAddress = addr.String
			o.Items = []models.OrderItem{}
			cur = &models.OrderWithUser{Order: o, Username: uname, Email: email, PhoneNumber: phone.String}
			byID[o.ID] = cur
			ordered = append(ordered, o.ID)
		}
		it.Subtotal = it.UnitPrice * int64(it.Quantity)
		cur.Items = append(cur.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.OrderWithUser, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, *byID[id])
	}
	return out, nil
}

// GetOrderDetails 非管理员只能查到自己的订单，过滤在查询里完成而不是查出后再判
func (s *OrderService) GetOrderDetails(orderID, requesterID int64, isAdmin bool) (*models.Order, error) {
	query := `SELECT id, user_id, order_date, total_amount, status, delivery_address, is_online_order
	          FROM orders WHERE id = ?`
	args := []any{orderID}
	if !isAdmin {
		query += ` AND user_id = ?`
		args = append(args, requesterID)
	}

	var o models.Order
	var addr sql.NullString
	err := s.db.QueryRow(query, args...).
		Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.Status, &addr, &o.IsOnlineOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	o.DeliveryAddress = addr.String

	items, err := s.orderItems(orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func scanOrderRows(rows *sql.Rows) ([]models.Order, error) {
	byID := make(map[int64]*models.Order)
	ordered := []int64{}
	for rows.Next() {
		var (
			o    models.Order
			addr sql.NullString
			it   models.OrderItem
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.Status, &addr, &o.IsOnlineOrder,
			&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}

		cur, ok := byID[o.ID]
		if !ok {
			o.DeliveryAddress = addr.String
			o.Items = []models.OrderItem{}
			cur = &o
			byID[o.ID] = cur
			ordered = append(ordered, o.ID)
		}
		it.Subtotal = it.UnitPrice * int64(it.Quantity)
		cur.Items = append(cur.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, *byID[id])
	}
	return out, nil
}
