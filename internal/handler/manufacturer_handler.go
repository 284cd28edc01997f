package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

// ManufacturerHandler handles manufacturer endpoints.
type ManufacturerHandler struct {
	svc *service.ManufacturerService
}

// NewManufacturerHandler constructs a ManufacturerHandler.
func NewManufacturerHandler(svc *service.ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{svc: svc}
}

// List handles GET /v1/admin/manufacturers
func (h *ManufacturerHandler) List(c *gin.Context) {
	f := listFilter(c)
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		utils.ServiceError(c, err, "Failed to list manufacturers")
		return
	}
	utils.SuccessWithPagination(c, 200, "Manufacturers retrieved", list, f.Page, f.Limit, total)
}

// Create handles POST /v1/admin/manufacturers
func (h *ManufacturerHandler) Create(c *gin.Context) {
	var req service.CreateManufacturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	m, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to create manufacturer")
		return
	}
	utils.Success(c, 201, "Manufacturer created", m)
}

// Get handles GET /v1/admin/manufacturers/:id
func (h *ManufacturerHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get manufacturer")
		return
	}
	utils.Success(c, 200, "Manufacturer retrieved", m)
}

// Update handles PUT /v1/admin/manufacturers/:id
func (h *ManufacturerHandler) Update(c *gin.Context) {
	var req service.UpdateManufacturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to update manufacturer")
		return
	}
	utils.Success(c, 200, "Manufacturer updated", m)
}

// Archive handles POST /v1/admin/manufacturers/:id/archive
func (h *ManufacturerHandler) Archive(c *gin.Context) {
	m, err := h.svc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to archive manufacturer")
		return
	}
	utils.Success(c, 200, "Manufacturer archived", m)
}

// Unarchive handles POST /v1/admin/manufacturers/:id/unarchive
func (h *ManufacturerHandler) Unarchive(c *gin.Context) {
	m, err := h.svc.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to unarchive manufacturer")
		return
	}
	utils.Success(c, 200, "Manufacturer restored", m)
}

// Delete handles DELETE /v1/admin/manufacturers/:id
func (h *ManufacturerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete manufacturer")
		return
	}
	utils.Success(c, 200, "Manufacturer deleted", nil)
}
