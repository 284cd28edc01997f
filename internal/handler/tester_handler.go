package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

// TesterHandler handles tester endpoints.
type TesterHandler struct {
	svc *service.TesterService
}

// NewTesterHandler constructs a TesterHandler.
func NewTesterHandler(svc *service.TesterService) *TesterHandler {
	return &TesterHandler{svc: svc}
}

// List handles GET /v1/admin/testers
func (h *TesterHandler) List(c *gin.Context) {
	f := repository.TesterFilter{ListFilter: listFilter(c), SkinType: c.Query("skinType")}
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		utils.ServiceError(c, err, "Failed to list testers")
		return
	}
	utils.SuccessWithPagination(c, 200, "Testers retrieved", list, f.Page, f.Limit, total)
}

// Create handles POST /v1/admin/testers
func (h *TesterHandler) Create(c *gin.Context) {
	var req service.CreateTesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	t, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to create tester")
		return
	}
	utils.Success(c, 201, "Tester created", t)
}

// Get handles GET /v1/admin/testers/:id
func (h *TesterHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get tester")
		return
	}
	utils.Success(c, 200, "Tester retrieved", t)
}

// Update handles PUT /v1/admin/testers/:id
func (h *TesterHandler) Update(c *gin.Context) {
	var req service.UpdateTesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to update tester")
		return
	}
	utils.Success(c, 200, "Tester updated", t)
}

// Archive handles POST /v1/admin/testers/:id/archive
func (h *TesterHandler) Archive(c *gin.Context) {
	t, err := h.svc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to archive tester")
		return
	}
	utils.Success(c, 200, "Tester archived", t)
}

// Unarchive handles POST /v1/admin/testers/:id/unarchive
func (h *TesterHandler) Unarchive(c *gin.Context) {
	t, err := h.svc.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to unarchive tester")
		return
	}
	utils.Success(c, 200, "Tester restored", t)
}

// Delete handles DELETE /v1/admin/testers/:id
func (h *TesterHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete tester")
		return
	}
	utils.Success(c, 200, "Tester deleted", nil)
}
