package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// Inventory 库存台账，只在调用方事务内操作，自身绝不提交
type Inventory struct{}

// Reserve 行锁读取商品后扣减库存，返回下单时捕获的单价（分）。
// 商品缺失或下架返回ErrProductUnavailable，库存不足返回ErrInsufficientStock。
func (Inventory) Reserve(tx *sql.Tx, productID int64, quantity int) (int64, error) {
	var price int64
	var stock int
	err := tx.QueryRow(
		`SELECT price, stock_quantity FROM products WHERE id = ? AND is_active = TRUE FOR UPDATE`,
		productID,
	).Scan(&price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: product %d not found or inactive", ErrProductUnavailable, productID)
	}
	if err != nil {
		return 0, err
	}

	if stock < quantity {
		return 0, fmt.Errorf("%w: product %d has %d in stock, %d requested",
			ErrInsufficientStock, productID, stock, quantity)
	}

	if _, err := tx.Exec(
		`UPDATE products SET stock_quantity = stock_quantity - ? WHERE id = ?`,
		quantity, productID,
	); err != nil {
		return 0, err
	}
	return price, nil
}

// Restore 归还库存，仅由订单取消调用
func (Inventory) Restore(tx *sql.Tx, productID int64, quantity int) error {
	res, err := tx.Exec(
		`UPDATE products SET stock_quantity = stock_quantity + ? WHERE id = ?`,
		quantity, productID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	return nil
}
