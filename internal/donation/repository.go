package donation

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, donationID uint) (*Donation, error)
	GetByOrderID(ctx context.Context, orderID string) (*Donation, error)

	// GetWithDonor loads the donation and its donor in one round trip; the
	// invoice worker uses this as its authoritative read.
	GetWithDonor(ctx context.Context, donationID uint) (*DonationWithDonor, error)

	UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, donationID uint) (*Donation, error) {
	var d Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", donationID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Donation, error) {
	var d Donation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) GetWithDonor(ctx context.Context, donationID uint) (*DonationWithDonor, error) {
	d, err := r.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	var donor Donor
	err = r.db.WithContext(ctx).
		Where("id = ?", d.DonorID).
		First(&donor).Error
	if err != nil {
		return nil, err
	}

	return &DonationWithDonor{Donation: *d, Donor: donor}, nil
}

func (r *repository) UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error {
	updates := map[string]interface{}{
		"status":     params.Status,
		"payment_id": params.PaymentID,
		"method":     params.Method,
	}
	if params.DonatedAt != nil {
		updates["donated_at"] = params.DonatedAt
	}

	return r.db.WithContext(ctx).
		Model(&Donation{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}
