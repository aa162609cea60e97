package invoice

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func registerFixture() []Invoice {
	sentAt := time.Date(2024, time.July, 1, 10, 35, 0, 0, time.UTC)
	return []Invoice{
		{
			InvoiceNumber: "SF/2024/0001",
			ReceiptNumber: "SF/2024/0001",
			InvoiceDate:   time.Date(2024, time.July, 1, 10, 30, 0, 0, time.UTC),
			FinancialYear: "2024-2025",
			DonorName:     "Asha Rao",
			DonorEmail:    "asha@example.com",
			Amount:        2500,
			Currency:      "INR",
			PaymentMethod: "upi",
			PaymentID:     "pay_abc123",
			Purpose:       "education",
			Is80GEligible: true,
			Status:        StatusSent,
			SentAt:        &sentAt,
			DownloadCount: 2,
		},
		{
			InvoiceNumber: "SF/2024/0002",
			ReceiptNumber: "SF/2024/0002",
			InvoiceDate:   time.Date(2024, time.July, 2, 9, 0, 0, 0, time.UTC),
			FinancialYear: "2024-2025",
			DonorName:     "Vikram Mehta",
			Amount:        150000,
			Currency:      "INR",
			PaymentMethod: "netbanking",
			Status:        StatusGenerated,
		},
	}
}

func TestExportRegisterCSV(t *testing.T) {
	data, filename, contentType, err := ExportRegister(registerFixture(), FormatCSV)
	if err != nil {
		t.Fatalf("ExportRegister returned error: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.HasPrefix(filename, "invoice_register_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %q", filename)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "Invoice No" {
		t.Errorf("header row = %v", records[0])
	}
	if records[1][0] != "SF/2024/0001" || records[1][4] != "Asha Rao" {
		t.Errorf("first row = %v", records[1])
	}
	if records[1][6] != "2500.00" {
		t.Errorf("amount cell = %q, want 2500.00", records[1][6])
	}
	if records[2][13] != "" {
		t.Errorf("unsent invoice must have empty Sent At, got %q", records[2][13])
	}
}

func TestExportRegisterExcel(t *testing.T) {
	data, filename, contentType, err := ExportRegister(registerFixture(), FormatExcel)
	if err != nil {
		t.Fatalf("ExportRegister returned error: %v", err)
	}
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", contentType)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %q", filename)
	}
	// xlsx files are zip archives.
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Error("output is not a zip archive")
	}
}

func TestExportRegisterUnsupportedFormat(t *testing.T) {
	_, _, _, err := ExportRegister(registerFixture(), "pdf")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
