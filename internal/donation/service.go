package donation

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sevasetu/foundation-backend/config"
	"github.com/sevasetu/foundation-backend/internal/auditlog"
	"github.com/sevasetu/foundation-backend/internal/queue"
)

// ErrInvalidSignature means the webhook body failed HMAC verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type Service interface {
	// HandlePaymentWebhook verifies the Razorpay webhook signature, marks the
	// donation captured and enqueues the invoice job. The heavy lifting
	// (PDF, storage, email) happens in the background worker so the webhook
	// stays fast.
	HandlePaymentWebhook(ctx context.Context, body []byte, signature string, ip string) error
}

type service struct {
	repo     Repository
	producer queue.Producer
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(repo Repository, producer queue.Producer, cfg *config.Config, auditSvc auditlog.Service) Service {
	return &service{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

// webhookEvent mirrors the slice of the Razorpay webhook body we consume.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID           string `json:"id"`
				OrderID      string `json:"order_id"`
				Method       string `json:"method"`
				Status       string `json:"status"`
				AcquirerData *struct {
					BankTransactionID string `json:"bank_transaction_id"`
				} `json:"acquirer_data"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *service) HandlePaymentWebhook(ctx context.Context, body []byte, signature string, ip string) error {
	// Step 1: Verify HMAC signature over the raw body
	expected := hmac.New(sha256.New, []byte(s.cfg.RazorpayWebhookSecret))
	expected.Write(body)
	computedSignature := hex.EncodeToString(expected.Sum(nil))

	if !hmac.Equal([]byte(computedSignature), []byte(signature)) {
		s.auditSvc.LogAction(ctx, nil, nil, "WEBHOOK_SIGNATURE_INVALID", map[string]interface{}{
			"reason": "invalid webhook signature",
		}, ip, "failure")

		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("malformed webhook body: %w", err)
	}

	if event.Event != "payment.captured" {
		// Other events are acknowledged without action.
		return nil
	}

	payment := event.Payload.Payment.Entity
	if payment.OrderID == "" || payment.ID == "" {
		return errors.New("webhook payment entity missing order or payment id")
	}

	// Step 2: Resolve the donation this payment belongs to
	don, err := s.repo.GetByOrderID(ctx, payment.OrderID)
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, nil, "WEBHOOK_DONATION_NOT_FOUND", map[string]interface{}{
			"order_id":   payment.OrderID,
			"payment_id": payment.ID,
		}, ip, "failure")

		return fmt.Errorf("donation record not found for order %s", payment.OrderID)
	}

	// Step 3: Mark captured (idempotent: a re-delivered webhook is a no-op
	// here, and the invoice worker has its own duplicate guard anyway)
	if don.Status != StatusCaptured {
		now := time.Now()
		err = s.repo.UpdatePaymentDetails(ctx, payment.OrderID, UpdatePaymentDetailsParams{
			Status:    StatusCaptured,
			PaymentID: &payment.ID,
			Method:    payment.Method,
			DonatedAt: &now,
		})
		if err != nil {
			return fmt.Errorf("failed to update donation: %w", err)
		}
	}

	// Step 4: Enqueue the invoice job
	job := queue.InvoiceJob{
		DonationID: don.ID,
		PaymentID:  payment.ID,
		Payment: queue.JobPayment{
			Method: payment.Method,
		},
	}
	if payment.AcquirerData != nil && payment.AcquirerData.BankTransactionID != "" {
		job.Payment.AcquirerData = &queue.AcquirerData{
			BankTransactionID: payment.AcquirerData.BankTransactionID,
		}
	}

	if err := s.producer.Publish(ctx, strconv.FormatUint(uint64(don.ID), 10), job); err != nil {
		s.auditSvc.LogAction(ctx, &don.ID, nil, "INVOICE_JOB_ENQUEUE_FAILED", map[string]interface{}{
			"order_id":   payment.OrderID,
			"payment_id": payment.ID,
			"error":      err.Error(),
		}, ip, "failure")

		return fmt.Errorf("failed to enqueue invoice job: %w", err)
	}

	s.auditSvc.LogAction(ctx, &don.ID, nil, "DONATION_CAPTURED", map[string]interface{}{
		"order_id":   payment.OrderID,
		"payment_id": payment.ID,
		"method":     payment.Method,
		"amount":     don.Amount,
	}, ip, "success")

	return nil
}
