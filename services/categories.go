package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"store-service/models"
)

type CategoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) Add(req models.AddCategoryRequest) (*models.Category, error) {
	var existingID int64
	err := s.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, req.Name).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("%w: category %q", ErrAlreadyExists, req.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if req.ParentCategoryID != nil {
		var parentID int64
		err := s.db.QueryRow(`SELECT id FROM categories WHERE id = ?`, *req.ParentCategoryID).Scan(&parentID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: parent category %d", ErrNotFound, *req.ParentCategoryID)
		}
		if err != nil {
			return nil, err
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO categories (name, parent_category_id) VALUES (?, ?)`,
		req.Name, req.ParentCategoryID,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	level := "main"
	if req.ParentCategoryID != nil {
		level = "sub"
	}
	return &models.Category{ID: id, Name: req.Name, ParentCategoryID: req.ParentCategoryID, Level: level}, nil
}

// List 返回带父级名称和商品数的层级视图
func (s *CategoryService) List() ([]models.Category, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.name, c.parent_category_id, pc.name, COUNT(p.id)
		 FROM categories c
		 LEFT JOIN categories pc ON c.parent_category_id = pc.id
		 LEFT JOIN products p ON c.id = p.category_id
		 GROUP BY c.id, c.name, c.parent_category_id, pc.name
		 ORDER BY COALESCE(c.parent_category_id, 0), c.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var (
			c          models.Category
			parentID   sql.NullInt64
			parentName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &parentID, &parentName, &c.ProductCount); err != nil {
			return nil, err
		}
		if parentID.Valid {
			c.ParentCategoryID = &parentID.Int64
			c.ParentCategoryName = parentName.String
			c.Level = "sub"
		} else {
			c.Level = "main"
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ProductsByName 按分类名（不区分大小写）查商品
func (s *CategoryService) ProductsByName(categoryName string) ([]models.Product, error) {
	name := strings.ToLower(strings.TrimSpace(categoryName))

	var categoryID int64
	err := s.db.QueryRow(`SELECT id FROM categories WHERE LOWER(name) = ?`, name).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, categoryName)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, name, description, category_id, price, stock_quantity, unit, barcode, image_url, is_active, created_at
		 FROM products WHERE category_id = ? AND is_active = TRUE`, categoryID,
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

func (s *CategoryService) Rename(categoryID int64, name string) (*models.Category, error) {
	var currentName string
	err := s.db.QueryRow(`SELECT name FROM categories WHERE id = ?`, categoryID).Scan(&currentName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	if err != nil {
		return nil, err
	}

	var dupID int64
	err = s.db.QueryRow(`SELECT id FROM categories WHERE name = ? AND id != ?`, name, categoryID).Scan(&dupID)
	if err == nil {
		return nil, fmt.Errorf("%w: category %q", ErrAlreadyExists, name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, categoryID); err != nil {
		return nil, err
	}

	var c models.Category
	var parentID sql.NullInt64
	if err := s.db.QueryRow(
		`SELECT id, name, parent_category_id FROM categories WHERE id = ?`, categoryID,
	).Scan(&c.ID, &c.Name, &parentID); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentCategoryID = &parentID.Int64
		c.Level = "sub"
	} else {
		c.Level = "main"
	}
	return &c, nil
}

// Delete 有子分类或商品引用时拒绝删除
func (s *CategoryService) Delete(categoryID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow(`SELECT id FROM categories WHERE id = ?`, categoryID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	if err != nil {
		return err
	}

	var subcategories int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM categories WHERE parent_category_id = ?`, categoryID,
	).Scan(&subcategories); err != nil {
		return err
	}
	if subcategories > 0 {
		return fmt.Errorf("%w: category has subcategories", ErrInvalidRequest)
	}

	var products int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID,
	).Scan(&products); err != nil {
		return err
	}
	if products > 0 {
		return fmt.Errorf("%w: category has products", ErrInvalidRequest)
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, categoryID); err != nil {
		return err
	}
	return tx.Commit()
}
