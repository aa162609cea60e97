package invoice

import (
	"testing"
	"time"
)

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC), "2023-2024"},
		{time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), "2023-2024"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), "2024-2025"},
	}

	for _, tc := range cases {
		if got := FinancialYear(tc.date); got != tc.want {
			t.Errorf("FinancialYear(%s) = %q, want %q", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	if got := FormatInvoiceNumber(7, date); got != "SF/2024/0007" {
		t.Errorf("FormatInvoiceNumber(7) = %q, want %q", got, "SF/2024/0007")
	}
	if got := FormatInvoiceNumber(12345, date); got != "SF/2024/12345" {
		t.Errorf("FormatInvoiceNumber(12345) = %q, want %q", got, "SF/2024/12345")
	}
}

func TestPDFFileName(t *testing.T) {
	if got := PDFFileName("SF/2024/0007"); got != "SF-2024-0007.pdf" {
		t.Errorf("PDFFileName = %q, want %q", got, "SF-2024-0007.pdf")
	}
}
