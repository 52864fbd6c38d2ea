package infra

// pdf.go — Day-end closing report generation using go-pdf/fpdf.
// Renders an A5 report with the sales summary, the per-method revenue
// breakdown, and the cash reconciliation block.
//
// The output file is saved to storagePath/dayend_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"anypos/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateDayEndPDF renders the closing report for a day-end summary.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateDayEndPDF(summary *dto.DayEndSummary, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("dayend_%s.pdf", summary.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label string, value decimal.Decimal) {
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, "$"+value.StringFixed(2), "", 1, "R", false, 0, "")
	}
	sectionTitle := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "AnyPOS", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Day-End Closing Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Session: "+summary.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Cashier: "+summary.CashierID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Opened: "+summary.OpenedAt, "", 1, "L", false, 0, "")
	if summary.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Closed: "+*summary.ClosedAt, "", 1, "L", false, 0, "")
	}

	// ── Sales summary ────────────────────────────────────────────────────────
	sectionTitle("Sales")
	pdf.CellFormat(labelW, 6, "Transactions", "", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, 6, fmt.Sprintf("%d", summary.SalesSummary.TotalSales), "", 1, "R", false, 0, "")
	row("Revenue", summary.SalesSummary.TotalRevenue)
	row("Discount", summary.SalesSummary.TotalDiscount)
	row("Tax", summary.SalesSummary.TotalTax)

	// ── Payment breakdown ────────────────────────────────────────────────────
	sectionTitle("Payment Breakdown")
	row("Cash", summary.PaymentBreakdown.Cash)
	row("Card", summary.PaymentBreakdown.Card)
	row("Cheque", summary.PaymentBreakdown.Cheque)
	row("Online", summary.PaymentBreakdown.Online)
	row("Credit", summary.PaymentBreakdown.Credit)

	// ── Cash reconciliation ──────────────────────────────────────────────────
	sectionTitle("Cash Reconciliation")
	row("Opening balance", summary.CashReconciliation.OpeningBalance)
	row("Expected cash", summary.CashReconciliation.ExpectedCash)
	row("Actual cash", summary.CashReconciliation.ActualCash)

	pdf.SetFont("Helvetica", "B", 9)
	row("Variance", summary.CashReconciliation.Variance)
	row("Closing balance", summary.CashReconciliation.ClosingBalance)
	pdf.SetFont("Helvetica", "", 9)

	if summary.Notes != nil && *summary.Notes != "" {
		sectionTitle("Notes")
		pdf.MultiCell(contentW, 5, *summary.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
