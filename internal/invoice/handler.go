package invoice

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler exposes the back-office invoice register.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/v1/invoices
func (h *Handler) List(c *gin.Context) {
	filters := parseFilters(c)

	resp, err := h.svc.ListInvoices(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/invoices/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	inv, err := h.svc.GetInvoice(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoice"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// Download handles GET /api/v1/invoices/:id/download. It records the
// download (count, timestamp, status) and redirects to the stored PDF.
func (h *Handler) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	url, err := h.svc.DownloadInvoice(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		case errors.Is(err, ErrPDFNotReady):
			c.JSON(http.StatusConflict, gin.H{"error": "invoice pdf not generated yet"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download invoice"})
		}
		return
	}

	c.Redirect(http.StatusFound, url)
}

// Export handles GET /api/v1/invoices/export?format=csv|xlsx
func (h *Handler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", FormatCSV)
	filters := parseFilters(c)

	data, filename, contentType, err := h.svc.ExportInvoices(c.Request.Context(), filters, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, data)
}

// Reconciliation handles GET /api/v1/invoices/reconciliation, listing
// records left without a PDF by a crash between create and upload.
func (h *Handler) Reconciliation(c *gin.Context) {
	invoices, err := h.svc.ListMissingPDF(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(invoices),
		"data":  invoices,
	})
}

func parseFilters(c *gin.Context) InvoiceFilters {
	filters := InvoiceFilters{
		Status:        c.Query("status"),
		FinancialYear: c.Query("financial_year"),
	}

	if v := c.Query("donor_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			donorID := uint(id)
			filters.DonorID = &donorID
		}
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.To = &t
		}
	}

	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	return filters
}
