package services

import (
	"database/sql"
	"errors"
	"fmt"

	"store-service/models"
)

// OrderService 下单与订单状态流转的核心，所有变更都在单个事务内完成
type OrderService struct {
	db  *sql.DB
	inv Inventory
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// PlaceOrder 下单事务：插入草稿订单 -> 逐项锁定商品、扣库存、按当前价记录明细 ->
// 回写总价 -> 提交。任一环节失败整体回滚，不产生部分状态。
func (s *OrderService) PlaceOrder(userID int64, items []models.OrderItemInput, deliveryAddress string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidRequest)
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %d", ErrInvalidRequest, it.ProductID)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO orders (user_id, order_date, total_amount, status, delivery_address, is_online_order)
		 VALUES (?, NOW(), 0, ?, ?, TRUE)`,
		userID, StatusPending, deliveryAddress,
	)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	var total int64
	for _, it := range items {
		unitPrice, err := s.inv.Reserve(tx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}

		if _, err := tx.Exec(
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			orderID, it.ProductID, it.Quantity, unitPrice,
		); err != nil {
			return nil, err
		}
		total += unitPrice * int64(it.Quantity)
	}

	if _, err := tx.Exec(`UPDATE orders SET total_amount = ? WHERE id = ?`, total, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.getOrder(orderID)
}

// UpdateStatus 状态机流转。转入cancelled时在同一事务内归还全部明细库存，
// 已取消订单再次取消不重复归还。
func (s *OrderService) UpdateStatus(orderID int64, newStatus string) (*models.Order, error) {
	if !IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q is not a recognized status", ErrInvalidStatus, newStatus)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// 锁订单行，避免并发流转交错
	var current string
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = ? FOR UPDATE`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if current == newStatus {
		// 幂等：状态未变，不碰库存
		return s.getOrder(orderID)
	}
	if !CanTransition(current, newStatus) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, current, newStatus)
	}

	if newStatus == StatusCancelled {
		if err := s.restoreOrderStock(tx, orderID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, newStatus, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.getOrder(orderID)
}

func (s *OrderService) restoreOrderStock(tx *sql.Tx, orderID int64) error {
	rows, err := tx.Query(`SELECT product_id, quantity FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type line struct {
		productID int64
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if err := s.inv.Restore(tx, l.productID, l.quantity); err != nil {
			return err
		}
	}
	return nil
}

// getOrder 读取提交后的完整订单（头 + 明细 + 商品名）
func (s *OrderService) getOrder(orderID int64) (*models.Order, error) {
	var o models.Order
	var addr sql.NullString
	err := s.db.QueryRow(
		`SELECT id, user_id, order_date, total_amount, status, delivery_address, is_online_order
		 FROM orders WHERE id = ?`, orderID,
	).Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.Status, &addr, &o.IsOnlineOrder)
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

func (s *OrderService) orderItems(orderID int64) ([]models.OrderItem, error) {
	rows, err := s.db.Query(
		`SELECT oi.product_id, p.name, oi.quantity, oi.unit_price
		 FROM order_items oi
		 JOIN products p ON oi.product_id = p.id
		 WHERE oi.order_id = ?
		 ORDER BY oi.id ASC`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		it.Subtotal = it.UnitPrice * int64(it.Quantity)
		items = append(items, it)
	}
	return items, rows.Err()
}
