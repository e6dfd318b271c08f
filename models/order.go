package models

import (
	"time"
)

// 金额一律为整数分
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	OrderDate       time.Time   `json:"order_date"`
	TotalAmount     int64       `json:"total_amount"`
	Status          string      `json:"status"`
	DeliveryAddress string      `json:"delivery_address"`
	IsOnlineOrder   bool        `json:"is_online_order"`
	Items           []OrderItem `json:"items"`
}

type OrderItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// OrderWithUser 管理端订单视图，附带下单用户信息
type OrderWithUser struct {
	Order
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type OrderItemInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemInput `json:"items" binding:"required"`
	DeliveryAddress string           `json:"delivery_address"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderEvent struct {
	OrderID  int64     `json:"order_id"`
	UserID   int64     `json:"user_id"`
	Type     string    `json:"type"` // created, status_updated, payment_check
	Status   string    `json:"status"`
	Total    int64     `json:"total"`
	Occurred time.Time `json:"occurred"`
}
