package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sevasetu/foundation-backend/internal/queue"
)

// scriptedService returns its scripted errors in order, then succeeds.
type scriptedService struct {
	errs   []error
	calls  int
	onCall func(attempt int)
}

func (s *scriptedService) ProcessPaymentJob(ctx context.Context, job queue.InvoiceJob) error {
	s.calls++
	if s.onCall != nil {
		s.onCall(s.calls)
	}
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func (s *scriptedService) GetInvoice(ctx context.Context, id uint) (*Invoice, error) {
	return nil, nil
}

func (s *scriptedService) ListInvoices(ctx context.Context, filters InvoiceFilters) (*InvoiceListResponse, error) {
	return nil, nil
}

func (s *scriptedService) DownloadInvoice(ctx context.Context, id uint) (string, error) {
	return "", nil
}

func (s *scriptedService) ExportInvoices(ctx context.Context, filters InvoiceFilters, format string) ([]byte, string, string, error) {
	return nil, "", "", nil
}

func (s *scriptedService) ListMissingPDF(ctx context.Context) ([]Invoice, error) {
	return nil, nil
}

func testWorker(svc Service) *Worker {
	return &Worker{
		svc:        svc,
		jobTimeout: time.Second,
		retryBase:  time.Millisecond,
		retryCap:   4 * time.Millisecond,
	}
}

func manyTransient(n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = retryable(errors.New("transient outage"))
	}
	return errs
}

// A transient failure must be retried in place until the job goes through;
// moving on would let a later commit on the partition skip it forever.
func TestProcessRetriesTransientFailures(t *testing.T) {
	svc := &scriptedService{errs: manyTransient(2)}
	w := testWorker(svc)

	if err := w.process(context.Background(), 1, queue.InvoiceJob{DonationID: 42}); err != nil {
		t.Fatalf("process returned error after recovery: %v", err)
	}
	if svc.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", svc.calls)
	}
}

func TestProcessStopsOnPermanentFailure(t *testing.T) {
	svc := &scriptedService{errs: []error{
		permanent(errors.New("donation missing")),
		retryable(errors.New("must never be reached")),
	}}
	w := testWorker(svc)

	err := w.process(context.Background(), 1, queue.InvoiceJob{DonationID: 42})
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if svc.calls != 1 {
		t.Errorf("permanent failure must not be retried, got %d attempts", svc.calls)
	}
}

func TestProcessStopsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &scriptedService{errs: manyTransient(100)}
	svc.onCall = func(int) { cancel() }
	w := testWorker(svc)

	err := w.process(ctx, 1, queue.InvoiceJob{DonationID: 42})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if svc.calls != 1 {
		t.Errorf("expected 1 attempt before shutdown, got %d", svc.calls)
	}
}
