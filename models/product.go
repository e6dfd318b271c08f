package models

import "time"

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CategoryID    int64     `json:"category_id"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Unit          string    `json:"unit"`
	Barcode       string    `json:"barcode"`
	ImageURL      string    `json:"image_url"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type AddProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	CategoryID    int64  `json:"category_id" binding:"required"`
	Price         int64  `json:"price" binding:"required"`
	StockQuantity int    `json:"stock_quantity" binding:"required"`
	Unit          string `json:"unit"`
	Barcode       string `json:"barcode"`
	ImageBase64   string `json:"image_base64"`
}

// ProductPatch 显式列出可改字段，nil表示不更新，取代动态拼SQL
type ProductPatch struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	CategoryID    *int64  `json:"category_id"`
	Price         *int64  `json:"price"`
	StockQuantity *int    `json:"stock_quantity"`
	Unit          *string `json:"unit"`
	Barcode       *string `json:"barcode"`
	ImageBase64   *string `json:"image_base64"`
}
