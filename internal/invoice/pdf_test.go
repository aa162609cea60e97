package invoice

import (
	"bytes"
	"testing"
	"time"
)

func sampleInvoiceData() InvoiceData {
	return InvoiceData{
		InvoiceNumber: "SF/2024/0042",
		InvoiceDate:   time.Date(2024, time.July, 1, 10, 30, 0, 0, time.UTC),
		ReceiptNumber: "SF/2024/0042",

		DonorName:    "Asha Rao",
		DonorMobile:  "9999999999",
		DonorEmail:   "asha@example.com",
		DonorAddress: "4 MG Road, Bengaluru, Karnataka, 560001",

		Amount:        2500,
		Currency:      "INR",
		AmountInWords: "Two Thousand Five Hundred Rupees Only",

		PaymentMethod: "upi",
		TransactionID: "pay_123",
		PaymentDate:   time.Date(2024, time.July, 1, 10, 25, 0, 0, time.UTC),

		Purpose:       "education",
		Is80GEligible: true,

		Foundation: Foundation{
			Name:    "Seva Setu Foundation",
			Address: "12, Gandhi Road, Bengaluru, Karnataka 560001",
			PAN:     "AAATS1234F",
			Reg80G:  "80G/2020/1234",
			Email:   "contact@sevasetu.org",
			Phone:   "+91 80 1234 5678",
		},
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	out, err := RenderPDF(sampleInvoiceData())
	if err != nil {
		t.Fatalf("RenderPDF returned error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("RenderPDF returned empty output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header")
	}
}

// The creation date is pinned to the invoice date, so identical input must
// yield byte-identical output.
func TestRenderPDFDeterministic(t *testing.T) {
	data := sampleInvoiceData()

	first, err := RenderPDF(data)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := RenderPDF(data)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("rendering the same InvoiceData twice produced different bytes")
	}
}

func TestRenderPDFOmitsMissingOptionalFields(t *testing.T) {
	data := sampleInvoiceData()
	data.DonorEmail = ""
	data.TransactionID = ""
	data.DonorPAN = ""

	out, err := RenderPDF(data)
	if err != nil {
		t.Fatalf("RenderPDF returned error: %v", err)
	}

	full, err := RenderPDF(sampleInvoiceData())
	if err != nil {
		t.Fatalf("RenderPDF returned error: %v", err)
	}

	// The sparse document drops whole lines rather than rendering blanks.
	if bytes.Equal(out, full) {
		t.Error("omitting optional fields did not change the layout")
	}
}

func TestRenderPDFTaxNoticeConditional(t *testing.T) {
	eligible := sampleInvoiceData()
	notEligible := sampleInvoiceData()
	notEligible.Is80GEligible = false

	a, err := RenderPDF(eligible)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := RenderPDF(notEligible)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Error("80G eligibility flag did not affect the document")
	}
}

func TestRenderPDFRejectsMissingRequiredFields(t *testing.T) {
	data := sampleInvoiceData()
	data.InvoiceNumber = ""
	if _, err := RenderPDF(data); err == nil {
		t.Error("expected error for missing invoice number")
	}

	data = sampleInvoiceData()
	data.DonorName = ""
	if _, err := RenderPDF(data); err == nil {
		t.Error("expected error for missing donor name")
	}
}
