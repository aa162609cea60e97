package donation

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/sevasetu/foundation-backend/config"
	"github.com/sevasetu/foundation-backend/internal/auditlog"
	"github.com/sevasetu/foundation-backend/internal/queue"
)

const testWebhookSecret = "whsec_test"

type stubRepo struct {
	byOrderID *Donation
	orderErr  error

	updates []UpdatePaymentDetailsParams
}

func (r *stubRepo) GetByID(ctx context.Context, donationID uint) (*Donation, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) GetByOrderID(ctx context.Context, orderID string) (*Donation, error) {
	return r.byOrderID, r.orderErr
}

func (r *stubRepo) GetWithDonor(ctx context.Context, donationID uint) (*DonationWithDonor, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) UpdatePaymentDetails(ctx context.Context, orderID string, params UpdatePaymentDetailsParams) error {
	r.updates = append(r.updates, params)
	return nil
}

type stubProducer struct {
	published []queue.InvoiceJob
	keys      []string
	err       error
}

func (p *stubProducer) Publish(ctx context.Context, key string, payload interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.published = append(p.published, payload.(queue.InvoiceJob))
	return nil
}

func (p *stubProducer) Close() error { return nil }

type stubAudit struct {
	actions []string
}

func (a *stubAudit) LogAction(ctx context.Context, donationID *uint, invoiceID *uint, action string, details map[string]interface{}, ip string, status string) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *stubAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type webhookFixture struct {
	repo     *stubRepo
	producer *stubProducer
	audit    *stubAudit
	svc      Service
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		repo: &stubRepo{
			byOrderID: &Donation{
				ID:      42,
				DonorID: 7,
				Amount:  2500,
				OrderID: "order_xyz",
				Status:  StatusPending,
			},
		},
		producer: &stubProducer{},
		audit:    &stubAudit{},
	}
	cfg := &config.Config{RazorpayWebhookSecret: testWebhookSecret}
	f.svc = NewService(f.repo, f.producer, cfg, f.audit)
	return f
}

const capturedBody = `{
	"event": "payment.captured",
	"payload": {
		"payment": {
			"entity": {
				"id": "pay_abc123",
				"order_id": "order_xyz",
				"method": "upi",
				"status": "captured",
				"acquirer_data": {"bank_transaction_id": "UTR123456"}
			}
		}
	}
}`

func TestHandlePaymentWebhookCaptured(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(capturedBody)

	if err := f.svc.HandlePaymentWebhook(context.Background(), body, sign(body), "1.2.3.4"); err != nil {
		t.Fatalf("HandlePaymentWebhook returned error: %v", err)
	}

	if len(f.repo.updates) != 1 {
		t.Fatalf("expected 1 donation update, got %d", len(f.repo.updates))
	}
	update := f.repo.updates[0]
	if update.Status != StatusCaptured {
		t.Errorf("status = %q, want %q", update.Status, StatusCaptured)
	}
	if update.PaymentID == nil || *update.PaymentID != "pay_abc123" {
		t.Errorf("payment id not recorded: %+v", update.PaymentID)
	}

	if len(f.producer.published) != 1 {
		t.Fatalf("expected 1 job published, got %d", len(f.producer.published))
	}
	job := f.producer.published[0]
	if job.DonationID != 42 || job.PaymentID != "pay_abc123" {
		t.Errorf("job = %+v", job)
	}
	if job.Payment.AcquirerData == nil || job.Payment.AcquirerData.BankTransactionID != "UTR123456" {
		t.Errorf("acquirer data not carried: %+v", job.Payment.AcquirerData)
	}
	if f.producer.keys[0] != "42" {
		t.Errorf("partition key = %q, want donation id", f.producer.keys[0])
	}
}

func TestHandlePaymentWebhookInvalidSignature(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(capturedBody)

	err := f.svc.HandlePaymentWebhook(context.Background(), body, "deadbeef", "1.2.3.4")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if len(f.producer.published) != 0 {
		t.Errorf("no job may be published on a forged webhook, got %d", len(f.producer.published))
	}
	if len(f.repo.updates) != 0 {
		t.Errorf("no donation update may happen on a forged webhook, got %d", len(f.repo.updates))
	}
}

func TestHandlePaymentWebhookIgnoresOtherEvents(t *testing.T) {
	f := newWebhookFixture()
	body := []byte(`{"event": "payment.failed", "payload": {"payment": {"entity": {"id": "pay_x", "order_id": "order_xyz"}}}}`)

	if err := f.svc.HandlePaymentWebhook(context.Background(), body, sign(body), "1.2.3.4"); err != nil {
		t.Fatalf("non-captured events must be acked, got %v", err)
	}
	if len(f.producer.published) != 0 {
		t.Errorf("expected no job for payment.failed, got %d", len(f.producer.published))
	}
}

func TestHandlePaymentWebhookAlreadyCaptured(t *testing.T) {
	f := newWebhookFixture()
	f.repo.byOrderID.Status = StatusCaptured
	body := []byte(capturedBody)

	if err := f.svc.HandlePaymentWebhook(context.Background(), body, sign(body), "1.2.3.4"); err != nil {
		t.Fatalf("redelivered webhook must succeed, got %v", err)
	}

	if len(f.repo.updates) != 0 {
		t.Errorf("captured donation must not be updated again, got %d updates", len(f.repo.updates))
	}
	// The job is still enqueued; the invoice worker has its own duplicate guard.
	if len(f.producer.published) != 1 {
		t.Errorf("expected 1 job published, got %d", len(f.producer.published))
	}
}

func TestHandlePaymentWebhookUnknownOrder(t *testing.T) {
	f := newWebhookFixture()
	f.repo.byOrderID = nil
	f.repo.orderErr = errors.New("record not found")
	body := []byte(capturedBody)

	if err := f.svc.HandlePaymentWebhook(context.Background(), body, sign(body), "1.2.3.4"); err == nil {
		t.Fatal("expected error for unknown order")
	}
	if len(f.producer.published) != 0 {
		t.Errorf("expected no job for unknown order, got %d", len(f.producer.published))
	}
}

func TestHandlePaymentWebhookEnqueueFailure(t *testing.T) {
	f := newWebhookFixture()
	f.producer.err = errors.New("kafka: broker unreachable")
	body := []byte(capturedBody)

	if err := f.svc.HandlePaymentWebhook(context.Background(), body, sign(body), "1.2.3.4"); err == nil {
		t.Fatal("expected error when the queue is down")
	}
	// The donation stays captured; the gateway retry will republish.
	if len(f.repo.updates) != 1 {
		t.Errorf("expected the capture update to persist, got %d", len(f.repo.updates))
	}
}
