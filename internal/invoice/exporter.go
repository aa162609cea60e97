package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export formats for the invoice register
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
)

// ExportRegister serializes the invoice register in the requested format and
// returns data, filename and content type.
func ExportRegister(invoices []Invoice, format string) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := exportRegisterCSV(invoices)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("invoice_register_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	case FormatExcel:
		data, err := exportRegisterExcel(invoices)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("invoice_register_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

var registerHeaders = []string{
	"Invoice No", "Receipt No", "Invoice Date", "Financial Year", "Donor Name",
	"Donor Email", "Amount", "Currency", "Payment Method", "Payment ID",
	"Purpose", "80G Eligible", "Status", "Sent At", "Downloads",
}

func registerRow(inv Invoice) []string {
	sentAt := ""
	if inv.SentAt != nil {
		sentAt = inv.SentAt.Format("2006-01-02 15:04:05")
	}

	return []string{
		inv.InvoiceNumber,
		inv.ReceiptNumber,
		inv.InvoiceDate.Format("2006-01-02"),
		inv.FinancialYear,
		inv.DonorName,
		inv.DonorEmail,
		fmt.Sprintf("%.2f", inv.Amount),
		inv.Currency,
		inv.PaymentMethod,
		inv.PaymentID,
		inv.Purpose,
		strconv.FormatBool(inv.Is80GEligible),
		inv.Status,
		sentAt,
		strconv.Itoa(inv.DownloadCount),
	}
}

func exportRegisterCSV(invoices []Invoice) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(registerHeaders); err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if err := writer.Write(registerRow(inv)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func exportRegisterExcel(invoices []Invoice) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Invoices"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range registerHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rIdx, inv := range invoices {
		row := registerRow(inv)
		for cIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
