package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevasetu/foundation-backend/internal/donation"
	"github.com/sevasetu/foundation-backend/internal/invoice"
)

// Setup registers all HTTP routes. Handlers are constructed in main and
// passed in so the route layer stays free of wiring.
func Setup(router *gin.Engine, invoiceHandler *invoice.Handler, donationHandler *donation.Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Payment gateway webhook (signature-verified inside the service)
	api.POST("/payments/webhook", donationHandler.PaymentWebhook)

	// Back-office invoice register
	invoices := api.Group("/invoices")
	{
		invoices.GET("", invoiceHandler.List)
		invoices.GET("/export", invoiceHandler.Export)
		invoices.GET("/reconciliation", invoiceHandler.Reconciliation)
		invoices.GET("/:id", invoiceHandler.Get)
		invoices.GET("/:id/download", invoiceHandler.Download)
	}
}
