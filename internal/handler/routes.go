package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/metrics"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Dashboard    *DashboardHandler
	Manufacturer *ManufacturerHandler
	Product      *ProductHandler
	Tester       *TesterHandler
	Test         *TestHandler
	Feedback     *FeedbackHandler
	Events       *EventsHandler
}

// SetupRoutes registers all routes. session gates the admin API and
// loginLimit throttles the login endpoint.
func SetupRoutes(router *gin.Engine, h *Handlers, session, loginLimit gin.HandlerFunc) {
	router.GET("/v1/health", h.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimit, h.Auth.Login)
	admin.POST("/auth/logout", h.Auth.Logout)
	admin.Use(session)
	{
		admin.GET("/dashboard", h.Dashboard.Stats)
		admin.GET("/events", h.Events.Stream)

		// Manufacturers
		admin.GET("/manufacturers", h.Manufacturer.List)
		admin.POST("/manufacturers", h.Manufacturer.Create)
		admin.GET("/manufacturers/:id", h.Manufacturer.Get)
		admin.PUT("/manufacturers/:id", h.Manufacturer.Update)
		admin.POST("/manufacturers/:id/archive", h.Manufacturer.Archive)
		admin.POST("/manufacturers/:id/unarchive", h.Manufacturer.Unarchive)
		admin.DELETE("/manufacturers/:id", h.Manufacturer.Delete)

		// Products and batches
		admin.GET("/products", h.Product.List)
		admin.POST("/products", h.Product.Create)
		admin.GET("/products/:id", h.Product.Get)
		admin.PUT("/products/:id", h.Product.Update)
		admin.POST("/products/:id/archive", h.Product.Archive)
		admin.POST("/products/:id/unarchive", h.Product.Unarchive)
		admin.DELETE("/products/:id", h.Product.Delete)
		admin.GET("/products/:id/variants", h.Product.ListVariants)
		admin.POST("/products/:id/variants", h.Product.CreateVariant)
		admin.GET("/variants/:id", h.Product.GetVariant)
		admin.PUT("/variants/:id", h.Product.UpdateVariant)
		admin.DELETE("/variants/:id", h.Product.DeleteVariant)

		// Testers
		admin.GET("/testers", h.Tester.List)
		admin.POST("/testers", h.Tester.Create)
		admin.GET("/testers/:id", h.Tester.Get)
		admin.PUT("/testers/:id", h.Tester.Update)
		admin.POST("/testers/:id/archive", h.Tester.Archive)
		admin.POST("/testers/:id/unarchive", h.Tester.Unarchive)
		admin.DELETE("/testers/:id", h.Tester.Delete)

		// Tests
		admin.GET("/tests", h.Test.List)
		admin.POST("/tests", h.Test.Create)
		admin.POST("/tests/complete-expired", h.Test.CompleteExpired)
		admin.GET("/tests/:id", h.Test.Get)
		admin.POST("/tests/:id/discontinue", h.Test.Discontinue)
		admin.POST("/tests/:id/complete", h.Test.Complete)
		admin.DELETE("/tests/:id", h.Test.Delete)
		admin.GET("/tests/:id/export", h.Test.Export)

		// Feedback
		admin.GET("/tests/:id/feedback", h.Feedback.ListByTest)
		admin.POST("/tests/:id/feedback", h.Feedback.Create)
		admin.GET("/feedback/:id", h.Feedback.Get)
		admin.PUT("/feedback/:id", h.Feedback.Update)
		admin.DELETE("/feedback/:id", h.Feedback.Delete)
	}
}
