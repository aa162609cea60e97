package invoice

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Idempotency lookup: returns (nil, nil) when no invoice exists yet.
	FindByDonationID(ctx context.Context, donationID uint) (*Invoice, error)

	// Create fails with ErrDuplicateInvoice when the unique index on
	// donation_id or invoice_number/receipt_number is violated.
	Create(ctx context.Context, inv *Invoice) error

	Update(ctx context.Context, invoiceID uint, fields map[string]interface{}) error
	GetByID(ctx context.Context, invoiceID uint) (*Invoice, error)

	CountByFinancialYear(ctx context.Context, financialYear string) (int64, error)

	// Register queries for the admin API
	ListWithFilters(ctx context.Context, filters InvoiceFilters) ([]Invoice, int64, error)
	ListMissingPDF(ctx context.Context) ([]Invoice, error)

	// Download tracking: bumps download_count, stamps last_downloaded_at and
	// advances status to downloaded.
	RecordDownload(ctx context.Context, invoiceID uint, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByDonationID(ctx context.Context, donationID uint) (*Invoice, error) {
	var inv Invoice
	err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	err := r.db.WithContext(ctx).Create(inv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateInvoice
	}
	return err
}

func (r *repository) Update(ctx context.Context, invoiceID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&Invoice{}).
		Where("id = ?", invoiceID).
		Updates(fields).Error
}

func (r *repository) GetByID(ctx context.Context, invoiceID uint) (*Invoice, error) {
	var inv Invoice
	err := r.db.WithContext(ctx).
		Where("id = ?", invoiceID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) CountByFinancialYear(ctx context.Context, financialYear string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Invoice{}).
		Where("financial_year = ?", financialYear).
		Count(&count).Error
	return count, err
}

func (r *repository) ListWithFilters(ctx context.Context, filters InvoiceFilters) ([]Invoice, int64, error) {
	var invoices []Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&Invoice{})
	query = applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Page > 0 && filters.Limit > 0 {
		offset := (filters.Page - 1) * filters.Limit
		query = query.Offset(offset).Limit(filters.Limit)
	}

	err := query.Order("invoice_date DESC").Find(&invoices).Error
	return invoices, total, err
}

func applyFilters(query *gorm.DB, filters InvoiceFilters) *gorm.DB {
	if filters.Status != "" && filters.Status != "all" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.FinancialYear != "" {
		query = query.Where("financial_year = ?", filters.FinancialYear)
	}
	if filters.DonorID != nil {
		query = query.Where("donor_id = ?", *filters.DonorID)
	}
	if filters.From != nil {
		query = query.Where("invoice_date >= ?", filters.From)
	}
	if filters.To != nil {
		query = query.Where("invoice_date <= ?", filters.To)
	}
	return query
}

// ListMissingPDF surfaces records left without a PDF by a crash between
// create and upload. These need a reconciliation pass, never silent repair.
func (r *repository) ListMissingPDF(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.WithContext(ctx).
		Where("pdf_url IS NULL AND status = ?", StatusGenerated).
		Order("invoice_date ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *repository) RecordDownload(ctx context.Context, invoiceID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]interface{}{
			"download_count":     gorm.Expr("download_count + 1"),
			"last_downloaded_at": at,
			"status":             StatusDownloaded,
		}).Error
}
