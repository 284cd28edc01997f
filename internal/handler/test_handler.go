package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/repository"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

// TestHandler handles test lifecycle and export endpoints.
type TestHandler struct {
	lifecycle *service.LifecycleService
	export    *service.ExportService
}

// NewTestHandler constructs a TestHandler.
func NewTestHandler(lifecycle *service.LifecycleService, export *service.ExportService) *TestHandler {
	return &TestHandler{lifecycle: lifecycle, export: export}
}

// List handles GET /v1/admin/tests
func (h *TestHandler) List(c *gin.Context) {
	f := repository.TestFilter{
		ListFilter: listFilter(c),
		TesterID:   c.Query("testerId"),
		ProductID:  c.Query("productId"),
	}
	tests, total, err := h.lifecycle.ListTests(c.Request.Context(), f)
	if err != nil {
		utils.ServiceError(c, err, "Failed to list tests")
		return
	}
	utils.SuccessWithPagination(c, 200, "Tests retrieved", tests, f.Page, f.Limit, total)
}

// Create handles POST /v1/admin/tests
func (h *TestHandler) Create(c *gin.Context) {
	var req service.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	tests, err := h.lifecycle.CreateTest(c.Request.Context(), &req)
	if err != nil {
		utils.ServiceError(c, err, "Failed to create test")
		return
	}
	utils.Success(c, 201, "Test created", tests)
}

// Get handles GET /v1/admin/tests/:id
func (h *TestHandler) Get(c *gin.Context) {
	t, err := h.lifecycle.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to get test")
		return
	}
	utils.Success(c, 200, "Test retrieved", t)
}

// Discontinue handles POST /v1/admin/tests/:id/discontinue
func (h *TestHandler) Discontinue(c *gin.Context) {
	var req service.DiscontinueTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	t, err := h.lifecycle.DiscontinueTest(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		utils.ServiceError(c, err, "Failed to discontinue test")
		return
	}
	utils.Success(c, 200, "Test discontinued", t)
}

// Complete handles POST /v1/admin/tests/:id/complete
func (h *TestHandler) Complete(c *gin.Context) {
	t, err := h.lifecycle.CompleteTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to complete test")
		return
	}
	utils.Success(c, 200, "Test completed", t)
}

// Delete handles DELETE /v1/admin/tests/:id
func (h *TestHandler) Delete(c *gin.Context) {
	if err := h.lifecycle.DeleteTest(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceError(c, err, "Failed to delete test")
		return
	}
	utils.Success(c, 200, "Test deleted", nil)
}

// CompleteExpired handles POST /v1/admin/tests/complete-expired
func (h *TestHandler) CompleteExpired(c *gin.Context) {
	ids, err := h.lifecycle.CompleteExpired(c.Request.Context(), time.Now().UTC())
	if err != nil {
		utils.ServiceError(c, err, "Failed to complete expired tests")
		return
	}
	utils.Success(c, 200, "Expired tests completed", gin.H{
		"completed": ids,
		"count":     len(ids),
	})
}

// Export handles GET /v1/admin/tests/:id/export. The document is written
// bare, without the response envelope.
func (h *TestHandler) Export(c *gin.Context) {
	doc, err := h.export.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceError(c, err, "Failed to export test")
		return
	}
	c.JSON(200, doc)
}
