// internal/interfaces/http/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	productService *product.Service
	log            *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		log:            log,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.productService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Products retrieved successfully", response)
}

// GetProduct handles GET /products/:sku
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.Get(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Product retrieved successfully", p)
}

// GetCategories handles GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondOK(c, "Categories retrieved successfully", categories)
}
