package donation

import (
	"strings"
	"time"
)

// Donation payment states
const (
	StatusPending  = "PENDING"
	StatusCaptured = "CAPTURED"
	StatusFailed   = "FAILED"
)

// Donor classification
const (
	DonorIndividual   = "individual"
	DonorOrganization = "organization"
	DonorCorporate    = "corporate"
)

// Donation identifies a payment attempt. The invoice pipeline only reads
// these rows; they are written by the checkout and webhook flows.
type Donation struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	DonorID  uint `gorm:"index;not null" json:"donor_id"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"size:3;default:INR" json:"currency"`
	Purpose  string  `gorm:"size:100" json:"purpose"`

	Method    string  `gorm:"size:30;default:PENDING" json:"method"`
	Status    string  `gorm:"size:20;index;default:PENDING" json:"status"`
	OrderID   string  `gorm:"size:60;uniqueIndex;not null" json:"order_id"`
	PaymentID *string `gorm:"size:60" json:"payment_id,omitempty"`

	Is80GEligible       bool `gorm:"default:true" json:"is_80g_eligible"`
	TaxExemptionPercent int  `gorm:"default:50" json:"tax_exemption_percent"`

	Note      *string    `gorm:"size:500" json:"note,omitempty"`
	DonatedAt *time.Time `json:"donated_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// Donor holds the donor profile referenced by donations.
type Donor struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName  string `gorm:"size:150;not null" json:"full_name"`
	Mobile    string `gorm:"size:20" json:"mobile"`
	Email     string `gorm:"size:150" json:"email"`

	AddressLine string `gorm:"size:300" json:"address_line"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Pincode     string `gorm:"size:10" json:"pincode"`

	PAN       *string `gorm:"size:10" json:"pan,omitempty"`
	Aadhaar   *string `gorm:"size:12" json:"aadhaar,omitempty"`
	DonorType string  `gorm:"size:20;default:individual" json:"donor_type"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Donor) TableName() string {
	return "donors"
}

// Address joins the postal fields into a single printable line.
func (d *Donor) Address() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.AddressLine, d.City, d.State, d.Pincode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// DonationWithDonor is the joined view the invoice worker reads.
type DonationWithDonor struct {
	Donation Donation
	Donor    Donor
}

// UpdatePaymentDetailsParams for marking a donation captured or failed.
type UpdatePaymentDetailsParams struct {
	Status    string
	PaymentID *string
	Method    string
	DonatedAt *time.Time
}
