package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

// ProductHandler handles product and batch endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns products with optional manufacturer, category, status and
// search filters.
func (h *ProductHandler) List(c *gin.Context) {
	f := repository.ProductFilter{
		ListFilter:     listFilter(c),
		ManufacturerID: c.Query("manufacturerId"),
		Category:       c.Query("category"),
	}
	products, total, err := h.productService.List(c.Request.Context(), f)
	if err != nil {
		utils.ServiceError(c, err, "Failed to get products")
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved successfully", products, f.Page, f.Limit, total)
}

// Create handles POST /v1/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to create product")
		return
	}
	utils.Success(c, 201, "Product created", p)
}

// Get handles GET /v1/admin/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get product")
		return
	}
	utils.Success(c, 200, "Product retrieved", p)
}

// Update handles PUT /v1/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p, err := h.productService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to update product")
		return
	}
	utils.Success(c, 200, "Product updated", p)
}

// Archive handles POST /v1/admin/products/:id/archive
func (h *ProductHandler) Archive(c *gin.Context) {
	p, err := h.productService.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to archive product")
		return
	}
	utils.Success(c, 200, "Product archived", p)
}

// Unarchive handles POST /v1/admin/products/:id/unarchive
func (h *ProductHandler) Unarchive(c *gin.Context) {
	p, err := h.productService.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to unarchive product")
		return
	}
	utils.Success(c, 200, "Product restored", p)
}

// Delete handles DELETE /v1/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete product")
		return
	}
	utils.Success(c, 200, "Product deleted", nil)
}

// --- Batches ---

// ListVariants handles GET /v1/admin/products/:id/variants
func (h *ProductHandler) ListVariants(c *gin.Context) {
	list, err := h.productService.ListVariants(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to list batches")
		return
	}
	utils.Success(c, 200, "Batches retrieved", list)
}

// CreateVariant handles POST /v1/admin/products/:id/variants
func (h *ProductHandler) CreateVariant(c *gin.Context) {
	var req service.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	v, err := h.productService.CreateVariant(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to create batch")
		return
	}
	utils.Success(c, 201, "Batch created", v)
}

// GetVariant handles GET /v1/admin/variants/:id
func (h *ProductHandler) GetVariant(c *gin.Context) {
	v, err := h.productService.GetVariant(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get batch")
		return
	}
	utils.Success(c, 200, "Batch retrieved", v)
}

// UpdateVariant handles PUT /v1/admin/variants/:id
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	var req service.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	v, err := h.productService.UpdateVariant(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to update batch")
		return
	}
	utils.Success(c, 200, "Batch updated", v)
}

// DeleteVariant handles DELETE /v1/admin/variants/:id
func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	if err := h.productService.DeleteVariant(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete batch")
		return
	}
	utils.Success(c, 200, "Batch deleted", nil)
}
