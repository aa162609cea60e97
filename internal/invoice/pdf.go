package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF lays out the one-page donation receipt and returns the raw
// document bytes. The function is deterministic for identical input: the PDF
// creation date is pinned to the invoice date, so identical InvoiceData
// produces byte-identical output.
func RenderPDF(data InvoiceData) ([]byte, error) {
	if data.InvoiceNumber == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	if data.DonorName == "" {
		return nil, fmt.Errorf("donor name is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(data.InvoiceDate.UTC())
	pdf.SetModificationDate(data.InvoiceDate.UTC())
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// ======= HEADER =======
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(180, 9, data.Foundation.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(180, 6, "Donation Receipt & Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(4)

	// ======= INVOICE METADATA =======
	pdf.SetFont("Arial", "", 10)
	metaRow(pdf, "Invoice No", data.InvoiceNumber, "Invoice Date", data.InvoiceDate.Format("02-01-2006"))
	metaRow(pdf, "Receipt No", data.ReceiptNumber, "Payment Date", data.PaymentDate.Format("02-01-2006"))
	metaRow(pdf, "Payment Method", strings.ToUpper(data.PaymentMethod), "", "")
	if data.TransactionID != "" {
		metaRow(pdf, "Transaction ID", data.TransactionID, "", "")
	}
	if data.BankTransactionID != "" {
		metaRow(pdf, "Bank Txn ID", data.BankTransactionID, "", "")
	}
	pdf.Ln(3)

	// ======= DONOR BLOCK =======
	sectionTitle(pdf, "Received From")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 5.5, data.DonorName, "", 1, "L", false, 0, "")
	if data.DonorMobile != "" {
		pdf.CellFormat(180, 5.5, "Mobile: "+data.DonorMobile, "", 1, "L", false, 0, "")
	}
	if data.DonorEmail != "" {
		pdf.CellFormat(180, 5.5, "Email: "+data.DonorEmail, "", 1, "L", false, 0, "")
	}
	if data.DonorAddress != "" {
		pdf.MultiCell(180, 5.5, data.DonorAddress, "", "L", false)
	}
	if data.DonorPAN != "" {
		pdf.CellFormat(180, 5.5, "PAN: "+data.DonorPAN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ======= FOUNDATION BLOCK =======
	sectionTitle(pdf, "Issued By")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 5.5, data.Foundation.Name, "", 1, "L", false, 0, "")
	pdf.MultiCell(180, 5.5, data.Foundation.Address, "", "L", false)
	if data.Foundation.PAN != "" {
		pdf.CellFormat(180, 5.5, "PAN: "+data.Foundation.PAN, "", 1, "L", false, 0, "")
	}
	if data.Foundation.Reg80G != "" {
		pdf.CellFormat(180, 5.5, "80G Registration: "+data.Foundation.Reg80G, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ======= AMOUNT BLOCK =======
	pdf.SetFillColor(235, 235, 235)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(180, 9, fmt.Sprintf("Donation Amount: %s %.2f", data.Currency, data.Amount), "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(180, 7, data.AmountInWords, "LRB", 1, "C", true, 0, "")
	pdf.Ln(3)

	if data.Purpose != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(180, 6, "Towards: "+data.Purpose, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	// ======= TAX EXEMPTION NOTICE =======
	if data.Is80GEligible {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(180, 5.5, "Tax Exemption", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(180, 5,
			"This donation is eligible for deduction under Section 80G of the Income Tax Act, 1961. "+
				"Please retain this receipt for your tax records.",
			"", "L", false)
		pdf.Ln(2)
	}

	// ======= SIGNATURES =======
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	y := pdf.GetY()
	pdf.Line(20, y, 80, y)
	pdf.Line(130, y, 190, y)
	pdf.SetY(y + 1)
	pdf.CellFormat(90, 6, "Donor's Signature", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Authorized Signatory", "", 1, "C", false, 0, "")

	// ======= FOOTER =======
	pdf.SetY(-35)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(180, 5, "Thank you for your generous contribution.", "", 1, "C", false, 0, "")
	contact := data.Foundation.Email
	if data.Foundation.Phone != "" {
		contact += " | " + data.Foundation.Phone
	}
	pdf.CellFormat(180, 5, contact, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFFileName maps an invoice number to its artifact file name, replacing
// the "/" separators so the name is path-safe.
func PDFFileName(invoiceNumber string) string {
	return strings.ReplaceAll(invoiceNumber, "/", "-") + ".pdf"
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(180, 6, title, "", 1, "L", false, 0, "")
}

func metaRow(pdf *gofpdf.Fpdf, leftLabel, leftValue, rightLabel, rightValue string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, leftLabel, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(55, 6, leftValue, "", 0, "L", false, 0, "")
	if rightLabel != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, rightLabel, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(55, 6, rightValue, "", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
