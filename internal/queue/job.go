package queue

// InvoiceJob is the message enqueued once per successful payment. The worker
// trusts only DonationID to resolve the authoritative donation and donor
// records; amount and donor fields are never carried in the payload.
type InvoiceJob struct {
	DonationID uint       `json:"donationId"`
	PaymentID  string     `json:"paymentId"`
	Payment    JobPayment `json:"payment"`
}

type JobPayment struct {
	Method       string        `json:"method"`
	AcquirerData *AcquirerData `json:"acquirer_data,omitempty"`
}

type AcquirerData struct {
	BankTransactionID string `json:"bank_transaction_id"`
}
