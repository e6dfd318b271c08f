package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"store-service/models"
	"store-service/services"
)

type ProductController struct {
	Products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{Products: products}
}

func (ctl *ProductController) ListProducts(c *gin.Context) {
	products, err := ctl.Products.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "data": products})
}

func (ctl *ProductController) AddProduct(c *gin.Context) {
	var req models.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := ctl.Products.Add(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added successfully", "data": product})
}

func (ctl *ProductController) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := ctl.Products.Update(productID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "data": product})
}

func (ctl *ProductController) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := ctl.Products.Delete(productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
