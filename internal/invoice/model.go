package invoice

import (
	"time"

	"gorm.io/datatypes"
)

// Invoice lifecycle states. Status only moves forward; a failed email send
// leaves the record at StatusGenerated until a later send or download.
const (
	StatusDraft      = "draft"
	StatusGenerated  = "generated"
	StatusSent       = "sent"
	StatusDownloaded = "downloaded"
)

// Invoice is the persisted record of a generated tax receipt. Exactly one row
// exists per donation; the unique index on donation_id is what makes
// concurrent duplicate job execution safe.
type Invoice struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	InvoiceNumber string `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	ReceiptNumber string `gorm:"size:50;uniqueIndex;not null" json:"receipt_number"`

	DonationID uint `gorm:"uniqueIndex;not null" json:"donation_id"`
	DonorID    uint `gorm:"index" json:"donor_id"`

	// Donor snapshot captured at generation time so the invoice stays correct
	// even if the donor profile changes later.
	DonorName    string  `gorm:"size:150;not null" json:"donor_name"`
	DonorMobile  string  `gorm:"size:20" json:"donor_mobile"`
	DonorEmail   string  `gorm:"size:150" json:"donor_email"`
	DonorAddress string  `gorm:"size:500" json:"donor_address"`
	DonorPAN     *string `gorm:"size:10" json:"donor_pan,omitempty"`
	DonorType    string  `gorm:"size:20" json:"donor_type"`

	Amount            float64    `gorm:"not null" json:"amount"`
	Currency          string     `gorm:"size:3;default:INR" json:"currency"`
	AmountInWords     string     `gorm:"size:300" json:"amount_in_words"`
	PaymentMethod     string     `gorm:"size:30" json:"payment_method"`
	PaymentID         string     `gorm:"size:60" json:"payment_id"`
	OrderID           string     `gorm:"size:60" json:"order_id"`
	BankTransactionID *string    `gorm:"size:60" json:"bank_transaction_id,omitempty"`
	PaymentDate       time.Time  `json:"payment_date"`
	PaymentMeta       datatypes.JSON `gorm:"type:jsonb" json:"payment_meta,omitempty"`

	Is80GEligible       bool   `gorm:"default:false" json:"is_80g_eligible"`
	TaxExemptionPercent int    `gorm:"default:0" json:"tax_exemption_percent"`
	Purpose             string `gorm:"size:100" json:"purpose"`

	InvoiceDate   time.Time `gorm:"index:idx_invoices_invoice_date,sort:desc;not null" json:"invoice_date"`
	FinancialYear string    `gorm:"size:9;index;not null" json:"financial_year"`

	Status           string     `gorm:"size:20;index;default:generated" json:"status"`
	PDFURL           *string    `gorm:"size:500" json:"pdf_url,omitempty"`
	PDFGeneratedAt   *time.Time `json:"pdf_generated_at,omitempty"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	SentTo           *string    `gorm:"size:150" json:"sent_to,omitempty"`
	DownloadCount    int        `gorm:"default:0" json:"download_count"`
	LastDownloadedAt *time.Time `json:"last_downloaded_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName overrides table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Foundation identity printed on every receipt.
type Foundation struct {
	Name    string
	Address string
	PAN     string
	Reg80G  string
	Email   string
	Phone   string
}

// InvoiceData is the full payload handed to the PDF renderer. It carries
// everything the page needs so rendering stays a pure transformation.
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	ReceiptNumber string

	DonorName    string
	DonorMobile  string
	DonorEmail   string
	DonorAddress string
	DonorPAN     string

	Amount        float64
	Currency      string
	AmountInWords string

	PaymentMethod     string
	TransactionID     string
	BankTransactionID string
	PaymentDate       time.Time

	Purpose       string
	Is80GEligible bool

	Foundation Foundation
}

// InvoiceFilters for the admin listing endpoint.
type InvoiceFilters struct {
	Status        string     `json:"status,omitempty"`
	FinancialYear string     `json:"financial_year,omitempty"`
	DonorID       *uint      `json:"donor_id,omitempty"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	Page          int        `json:"page"`
	Limit         int        `json:"limit"`
}

// InvoiceListResponse represents the paginated invoice register.
type InvoiceListResponse struct {
	Data       []Invoice `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
