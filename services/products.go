package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"store-service/models"
	"store-service/storage"
)

type ProductService struct {
	db     *sql.DB
	images storage.ImageStore
}

func NewProductService(db *sql.DB, images storage.ImageStore) *ProductService {
	return &ProductService{db: db, images: images}
}

// ListActive 商品列表只含上架商品
func (s *ProductService) ListActive() ([]models.Product, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, category_id, price, stock_quantity, unit, barcode, image_url, is_active, created_at
		 FROM products WHERE is_active = TRUE`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *ProductService) Add(req models.AddProductRequest) (*models.Product, error) {
	if req.Price <= 0 || req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: price must be positive and stock non-negative", ErrInvalidRequest)
	}

	imageURL := ""
	if req.ImageBase64 != "" {
		url, err := s.uploadImage(req.ImageBase64)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	res, err := s.db.Exec(
		`INSERT INTO products (name, description, category_id, price, stock_quantity, unit, barcode, image_url, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)`,
		req.Name, nullable(req.Description), req.CategoryID, req.Price, req.StockQuantity,
		nullable(req.Unit), nullable(req.Barcode), nullable(imageURL),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Update 部分更新：patch里列的才更新，再由枚举好的字段拼参数化语句
func (s *ProductService) Update(productID int64, patch models.ProductPatch) (*models.Product, error) {
	if _, err := s.Get(productID); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
		}
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.StockQuantity != nil {
		if *patch.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock must be non-negative", ErrInvalidRequest)
		}
		sets = append(sets, "stock_quantity = ?")
		args = append(args, *patch.StockQuantity)
	}
	if patch.Unit != nil {
		sets = append(sets, "unit = ?")
		args = append(args, *patch.Unit)
	}
	if patch.Barcode != nil {
		sets = append(sets, "barcode = ?")
		args = append(args, *patch.Barcode)
	}
	if patch.ImageBase64 != nil && *patch.ImageBase64 != "" {
		url, err := s.uploadImage(*patch.ImageBase64)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "image_url = ?")
		args = append(args, url)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	}

	args = append(args, productID)
	if _, err := s.db.Exec(
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	); err != nil {
		return nil, err
	}
	return s.Get(productID)
}

// Delete 软删除。商品还挂在进行中订单上时拒绝删除。
func (s *ProductService) Delete(productID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow(`SELECT id FROM products WHERE id = ?`, productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return err
	}

	var active int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM orders o
		 JOIN order_items oi ON o.id = oi.order_id
		 WHERE oi.product_id = ? AND o.status IN (?, ?)`,
		productID, StatusPending, StatusProcessing,
	).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: cannot delete product with active orders", ErrInvalidRequest)
	}

	if _, err := tx.Exec(`UPDATE products SET is_active = FALSE WHERE id = ?`, productID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ProductService) Get(productID int64) (*models.Product, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, category_id, price, stock_quantity, unit, barcode, image_url, is_active, created_at
		 FROM products WHERE id = ?`, productID,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) uploadImage(base64Image string) (string, error) {
	url, err := s.images.Upload(base64Image)
	if errors.Is(err, storage.ErrImageTooLarge) || errors.Is(err, storage.ErrBadImageFormat) {
		return "", fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p        models.Product
		desc     sql.NullString
		unit     sql.NullString
		barcode  sql.NullString
		imageURL sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &p.CategoryID, &p.Price, &p.StockQuantity,
		&unit, &barcode, &imageURL, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.Unit = unit.String
	p.Barcode = barcode.String
	p.ImageURL = imageURL.String
	return &p, nil
}
