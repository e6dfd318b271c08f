package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"store-service/models"
	"store-service/services"
)

type CategoryController struct {
	Categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{Categories: categories}
}

func (ctl *CategoryController) AddCategory(c *gin.Context) {
	var req models.AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := ctl.Categories.Add(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category added successfully", "data": category})
}

func (ctl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctl.Categories.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "data": categories})
}

func (ctl *CategoryController) GetProductsByCategory(c *gin.Context) {
	products, err := ctl.Categories.ProductsByName(c.Param("categoryName"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "data": products})
}

func (ctl *CategoryController) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var req models.RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := ctl.Categories.Rename(categoryID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully", "data": category})
}

func (ctl *CategoryController) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := ctl.Categories.Delete(categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
