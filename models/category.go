package models

type Category struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	ParentCategoryID   *int64 `json:"parent_category_id"`
	ParentCategoryName string `json:"parent_category_name,omitempty"`
	ProductCount       int    `json:"product_count"`
	Level              string `json:"level"` // main 或 sub
}

type AddCategoryRequest struct {
	Name             string `json:"name" binding:"required"`
	ParentCategoryID *int64 `json:"parent_category_id"`
}

type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
