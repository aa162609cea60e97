package invoice

import "errors"

var (
	// ErrDuplicateInvoice means an invoice already exists for the donation,
	// either found at the idempotency check or surfaced by the unique index
	// at create time. It is a benign outcome, never a job failure.
	ErrDuplicateInvoice = errors.New("invoice already exists for donation")

	// ErrDonationNotFound means the job referenced a donation id that does
	// not exist. The triggering data is wrong, so the job must not be retried.
	ErrDonationNotFound = errors.New("donation not found")

	// ErrPDFNotReady means a download was requested before the PDF was
	// uploaded.
	ErrPDFNotReady = errors.New("invoice pdf not generated yet")
)

// PermanentError marks a job failure that retrying cannot fix. The queue
// consumer commits the offset and drops the job after logging it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// RetryableError marks a transient failure (storage, database, network). The
// queue consumer leaves the offset uncommitted so the job is re-delivered.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return "retryable: " + e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func permanent(err error) error { return &PermanentError{Err: err} }
func retryable(err error) error { return &RetryableError{Err: err} }

// IsPermanent reports whether err was classified as non-retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsRetryable reports whether err was classified as transient.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
