package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every pipeline action: webhook receipts, invoice
// generation, duplicate skips, email failures.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	DonationID *uint          `gorm:"index" json:"donation_id"` // nullable (e.g. failed signature check)
	InvoiceID  *uint          `gorm:"index" json:"invoice_id"`
	Action     string         `gorm:"size:100;not null;index" json:"action"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	IPAddress  string         `gorm:"size:45" json:"ip_address"`
	Status     string         `gorm:"size:20;not null;index" json:"status"` // success/failure
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName overrides table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	DonationID *uint      `json:"donation_id"`
	InvoiceID  *uint      `json:"invoice_id"`
	Action     string     `json:"action"`
	Status     string     `json:"status"`
	FromDate   *time.Time `json:"from_date"`
	ToDate     *time.Time `json:"to_date"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
