package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sevasetu/foundation-backend/internal/auditlog"
	"github.com/sevasetu/foundation-backend/internal/donation"
	"github.com/sevasetu/foundation-backend/internal/notification"
	"github.com/sevasetu/foundation-backend/internal/queue"
	"github.com/sevasetu/foundation-backend/internal/storage"
)

// pdfFolder is the artifact-store namespace holding generated receipts.
const pdfFolder = "invoices"

type Service interface {
	// ProcessPaymentJob runs the full pipeline for one captured payment:
	// idempotency check, record create, PDF render, upload, record update,
	// email. Errors come back wrapped as PermanentError or RetryableError so
	// the queue consumer can apply the right policy. A duplicate donation is
	// a successful no-op, and an email failure never fails the job.
	ProcessPaymentJob(ctx context.Context, job queue.InvoiceJob) error

	// Admin register operations
	GetInvoice(ctx context.Context, invoiceID uint) (*Invoice, error)
	ListInvoices(ctx context.Context, filters InvoiceFilters) (*InvoiceListResponse, error)
	DownloadInvoice(ctx context.Context, invoiceID uint) (string, error)
	ExportInvoices(ctx context.Context, filters InvoiceFilters, format string) ([]byte, string, string, error)
	ListMissingPDF(ctx context.Context) ([]Invoice, error)
}

// PaymentFetcher resolves payment details from the gateway when the job
// payload omits them.
type PaymentFetcher interface {
	Fetch(paymentID string) (map[string]interface{}, error)
}

type service struct {
	repo       Repository
	donations  donation.Repository
	store      storage.ArtifactStore
	mailer     notification.Dispatcher
	sequencer  Sequencer
	payments   PaymentFetcher
	auditSvc   auditlog.Service
	foundation Foundation
	now        func() time.Time
}

func NewService(
	repo Repository,
	donations donation.Repository,
	store storage.ArtifactStore,
	mailer notification.Dispatcher,
	sequencer Sequencer,
	payments PaymentFetcher,
	auditSvc auditlog.Service,
	foundation Foundation,
) Service {
	return &service{
		repo:       repo,
		donations:  donations,
		store:      store,
		mailer:     mailer,
		sequencer:  sequencer,
		payments:   payments,
		auditSvc:   auditSvc,
		foundation: foundation,
		now:        time.Now,
	}
}

// ==============================
// Pipeline
// ==============================

func (s *service) ProcessPaymentJob(ctx context.Context, job queue.InvoiceJob) error {
	// Step 1: Load the authoritative donation + donor
	dd, err := s.donations.GetWithDonor(ctx, job.DonationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.auditSvc.LogAction(ctx, &job.DonationID, nil, "INVOICE_DONATION_NOT_FOUND", map[string]interface{}{
				"payment_id": job.PaymentID,
			}, "", "failure")
			return permanent(fmt.Errorf("%w: id %d", ErrDonationNotFound, job.DonationID))
		}
		return retryable(fmt.Errorf("failed to load donation %d: %w", job.DonationID, err))
	}

	// Step 2: Idempotency check. Webhooks can be delivered more than once;
	// a found invoice means a previous run already did the work.
	existing, err := s.repo.FindByDonationID(ctx, job.DonationID)
	if err != nil {
		return retryable(fmt.Errorf("idempotency lookup failed: %w", err))
	}
	if existing != nil {
		log.Printf("ℹ️ Invoice %s already exists for donation %d, skipping", existing.InvoiceNumber, job.DonationID)
		s.auditSvc.LogAction(ctx, &job.DonationID, &existing.ID, "INVOICE_DUPLICATE_SKIPPED", map[string]interface{}{
			"invoice_number": existing.InvoiceNumber,
		}, "", "success")
		return nil
	}

	// Step 3: Create the invoice record with status=generated
	inv, err := s.buildInvoice(ctx, dd, job)
	if err != nil {
		return err
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			// The unique index fired. A concurrent job for the same donation
			// is a benign race; a number collision with a different donation
			// means the candidate sequence was stale and a retry has to draw
			// a fresh one.
			winner, findErr := s.repo.FindByDonationID(ctx, job.DonationID)
			if findErr != nil {
				return retryable(fmt.Errorf("post-create duplicate lookup failed: %w", findErr))
			}
			if winner != nil {
				log.Printf("ℹ️ Duplicate create for donation %d, another worker won the race", job.DonationID)
				s.auditSvc.LogAction(ctx, &job.DonationID, &winner.ID, "INVOICE_DUPLICATE_SKIPPED", map[string]interface{}{
					"invoice_number": winner.InvoiceNumber,
				}, "", "success")
				return nil
			}
			return retryable(fmt.Errorf("invoice number collision on %s: %w", inv.InvoiceNumber, err))
		}
		return retryable(fmt.Errorf("invoice create failed: %w", err))
	}

	// Step 4: Render the PDF. Failures here are bad input data, not
	// transient conditions; the record stays at generated with no pdf_url
	// and needs a reconciliation pass.
	pdfBytes, err := RenderPDF(s.invoiceData(inv))
	if err != nil {
		s.auditSvc.LogAction(ctx, &job.DonationID, &inv.ID, "INVOICE_PDF_RENDER_FAILED", map[string]interface{}{
			"invoice_number": inv.InvoiceNumber,
			"error":          err.Error(),
		}, "", "failure")
		return permanent(fmt.Errorf("pdf render failed for %s: %w", inv.InvoiceNumber, err))
	}

	// Step 5: Upload to the artifact store
	fileName := PDFFileName(inv.InvoiceNumber)
	pdfURL, err := s.store.Upload(ctx, pdfBytes, fileName, pdfFolder)
	if err != nil {
		return retryable(fmt.Errorf("pdf upload failed for %s: %w", inv.InvoiceNumber, err))
	}

	// Step 6: Attach the PDF to the record
	generatedAt := s.now()
	err = s.repo.Update(ctx, inv.ID, map[string]interface{}{
		"pdf_url":          pdfURL,
		"pdf_generated_at": generatedAt,
	})
	if err != nil {
		return retryable(fmt.Errorf("failed to attach pdf url: %w", err))
	}
	inv.PDFURL = &pdfURL
	inv.PDFGeneratedAt = &generatedAt

	s.auditSvc.LogAction(ctx, &job.DonationID, &inv.ID, "INVOICE_GENERATED", map[string]interface{}{
		"invoice_number": inv.InvoiceNumber,
		"amount":         inv.Amount,
		"pdf_url":        pdfURL,
	}, "", "success")

	// Step 7: Email. The financial artifact is already durably correct, so a
	// send failure is logged and the status stays at generated.
	s.sendInvoiceEmail(ctx, inv, pdfBytes, fileName)

	return nil
}

func (s *service) buildInvoice(ctx context.Context, dd *donation.DonationWithDonor, job queue.InvoiceJob) (*Invoice, error) {
	don := dd.Donation
	donor := dd.Donor

	method := job.Payment.Method
	var bankTxnID *string
	if job.Payment.AcquirerData != nil && job.Payment.AcquirerData.BankTransactionID != "" {
		v := job.Payment.AcquirerData.BankTransactionID
		bankTxnID = &v
	}

	// Enrich from the gateway when the payload omits the method.
	if method == "" && s.payments != nil && job.PaymentID != "" {
		payment, err := s.payments.Fetch(job.PaymentID)
		if err != nil {
			log.Printf("⚠️ Gateway fetch failed for payment %s: %v", job.PaymentID, err)
		} else {
			if m, ok := payment["method"].(string); ok {
				method = m
			}
			if acq, ok := payment["acquirer_data"].(map[string]interface{}); ok {
				if b, ok := acq["bank_transaction_id"].(string); ok && b != "" {
					bankTxnID = &b
				}
			}
		}
	}
	if method == "" {
		method = don.Method
	}

	invoiceDate := s.now()
	financialYear := FinancialYear(invoiceDate)

	seq, err := s.nextSequence(ctx, financialYear)
	if err != nil {
		return nil, retryable(fmt.Errorf("sequence allocation failed: %w", err))
	}
	invoiceNumber := FormatInvoiceNumber(seq, invoiceDate)

	paymentDate := invoiceDate
	if don.DonatedAt != nil {
		paymentDate = *don.DonatedAt
	}

	metaJSON, _ := json.Marshal(job.Payment)

	return &Invoice{
		InvoiceNumber: invoiceNumber,
		ReceiptNumber: invoiceNumber,
		DonationID:    don.ID,
		DonorID:       donor.ID,

		DonorName:    donor.FullName,
		DonorMobile:  donor.Mobile,
		DonorEmail:   donor.Email,
		DonorAddress: donor.Address(),
		DonorPAN:     donor.PAN,
		DonorType:    donor.DonorType,

		Amount:            don.Amount,
		Currency:          don.Currency,
		AmountInWords:     AmountInWords(don.Amount),
		PaymentMethod:     method,
		PaymentID:         job.PaymentID,
		OrderID:           don.OrderID,
		BankTransactionID: bankTxnID,
		PaymentDate:       paymentDate,
		PaymentMeta:       datatypes.JSON(metaJSON),

		Is80GEligible:       don.Is80GEligible,
		TaxExemptionPercent: don.TaxExemptionPercent,
		Purpose:             don.Purpose,

		InvoiceDate:   invoiceDate,
		FinancialYear: financialYear,
		Status:        StatusGenerated,
	}, nil
}

// nextSequence prefers the redis counter and falls back to a row count when
// redis is unavailable. Either way the number is only a candidate; the
// unique index decides.
func (s *service) nextSequence(ctx context.Context, financialYear string) (int64, error) {
	if s.sequencer != nil {
		seq, err := s.sequencer.Next(ctx, financialYear)
		if err == nil {
			return seq, nil
		}
		log.Printf("⚠️ Sequence counter unavailable, falling back to row count: %v", err)
	}

	count, err := s.repo.CountByFinancialYear(ctx, financialYear)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (s *service) invoiceData(inv *Invoice) InvoiceData {
	donorPAN := ""
	if inv.DonorPAN != nil {
		donorPAN = *inv.DonorPAN
	}
	bankTxnID := ""
	if inv.BankTransactionID != nil {
		bankTxnID = *inv.BankTransactionID
	}

	return InvoiceData{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		ReceiptNumber: inv.ReceiptNumber,

		DonorName:    inv.DonorName,
		DonorMobile:  inv.DonorMobile,
		DonorEmail:   inv.DonorEmail,
		DonorAddress: inv.DonorAddress,
		DonorPAN:     donorPAN,

		Amount:        inv.Amount,
		Currency:      inv.Currency,
		AmountInWords: inv.AmountInWords,

		PaymentMethod:     inv.PaymentMethod,
		TransactionID:     inv.PaymentID,
		BankTransactionID: bankTxnID,
		PaymentDate:       inv.PaymentDate,

		Purpose:       inv.Purpose,
		Is80GEligible: inv.Is80GEligible,

		Foundation: s.foundation,
	}
}

func (s *service) sendInvoiceEmail(ctx context.Context, inv *Invoice, pdfBytes []byte, fileName string) {
	if inv.DonorEmail == "" {
		log.Printf("ℹ️ Donor has no email, leaving invoice %s at status=generated", inv.InvoiceNumber)
		return
	}

	subject := "Donation Receipt - " + inv.InvoiceNumber
	body := buildInvoiceEmailBody(inv, s.foundation)

	result, err := s.mailer.Send(inv.DonorEmail, subject, body, &notification.Attachment{
		Filename: fileName,
		Content:  pdfBytes,
	})
	if err == nil && !result.Success {
		err = errors.New("dispatcher reported unsuccessful delivery")
	}
	if err != nil {
		log.Printf("⚠️ Email send failed for invoice %s: %v", inv.InvoiceNumber, err)
		s.auditSvc.LogAction(ctx, &inv.DonationID, &inv.ID, "INVOICE_EMAIL_FAILED", map[string]interface{}{
			"invoice_number": inv.InvoiceNumber,
			"sent_to":        inv.DonorEmail,
			"error":          err.Error(),
		}, "", "failure")
		return
	}

	sentAt := s.now()
	err = s.repo.Update(ctx, inv.ID, map[string]interface{}{
		"status":  StatusSent,
		"sent_at": sentAt,
		"sent_to": inv.DonorEmail,
	})
	if err != nil {
		log.Printf("⚠️ Failed to record send confirmation for invoice %s: %v", inv.InvoiceNumber, err)
		return
	}

	s.auditSvc.LogAction(ctx, &inv.DonationID, &inv.ID, "INVOICE_EMAIL_SENT", map[string]interface{}{
		"invoice_number":      inv.InvoiceNumber,
		"sent_to":             inv.DonorEmail,
		"provider_message_id": result.MessageID,
	}, "", "success")
}

func buildInvoiceEmailBody(inv *Invoice, f Foundation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<p>Dear %s,</p>", inv.DonorName))
	b.WriteString(fmt.Sprintf("<p>Thank you for your generous donation of %s %.2f to %s.</p>", inv.Currency, inv.Amount, f.Name))
	b.WriteString(fmt.Sprintf("<p>Your receipt number is <b>%s</b>. The invoice is attached to this email.</p>", inv.InvoiceNumber))
	if inv.PaymentID != "" {
		b.WriteString(fmt.Sprintf("<p>Transaction ID: %s</p>", inv.PaymentID))
	}
	if inv.Is80GEligible {
		b.WriteString("<p>This donation is eligible for tax deduction under Section 80G of the Income Tax Act, 1961. Please retain the attached receipt for your records.</p>")
	}
	b.WriteString(fmt.Sprintf("<p>Warm regards,<br/>%s</p>", f.Name))
	return b.String()
}

// ==============================
// Admin register operations
// ==============================

func (s *service) GetInvoice(ctx context.Context, invoiceID uint) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

func (s *service) ListInvoices(ctx context.Context, filters InvoiceFilters) (*InvoiceListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}

	invoices, total, err := s.repo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filters.Limit) - 1) / int64(filters.Limit))
	return &InvoiceListResponse{
		Data:       invoices,
		Total:      total,
		Page:       filters.Page,
		Limit:      filters.Limit,
		TotalPages: totalPages,
	}, nil
}

// DownloadInvoice returns the stored PDF URL and records the download.
func (s *service) DownloadInvoice(ctx context.Context, invoiceID uint) (string, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.PDFURL == nil || *inv.PDFURL == "" {
		return "", ErrPDFNotReady
	}

	if err := s.repo.RecordDownload(ctx, inv.ID, s.now()); err != nil {
		return "", err
	}

	return *inv.PDFURL, nil
}

func (s *service) ExportInvoices(ctx context.Context, filters InvoiceFilters, format string) ([]byte, string, string, error) {
	// Export ignores pagination: the register is exported whole per filter.
	filters.Page = 0
	filters.Limit = 0

	invoices, _, err := s.repo.ListWithFilters(ctx, filters)
	if err != nil {
		return nil, "", "", err
	}

	return ExportRegister(invoices, format)
}

func (s *service) ListMissingPDF(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListMissingPDF(ctx)
}
