package ledger

import (
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"DATE", 22, "C"},
	{"TYPE", 20, "C"},
	{"DESCRIPTION", 62, "L"},
	{"REFERENCE", 26, "L"},
	{"IN", 18, "R"},
	{"OUT", 18, "R"},
	{"BALANCE", 20, "R"},
}

// WritePDF renders a printable statement of the report.
func WritePDF(w io.Writer, report *Report) error {
	currency := report.Account.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Petty Cash Statement")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, fmt.Sprintf("Account: %s (%s)", report.Account.Name, report.Account.Code))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Period: "+periodLabel(report.Filter))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 10)

	sumW := []float64{46.5, 46.5, 46.5, 46.5}
	pdf.CellFormat(sumW[0], 9, "Opening ("+currency+")", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 9, "Issued ("+currency+")", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 9, "Spent ("+currency+")", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[3], 9, "Closing ("+currency+")", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(sumW[0], 9, money(report.OpeningBalance), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 9, money(report.Summary.TotalIssuances), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 9, money(report.Summary.TotalExpenses), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[3], 9, money(report.ClosingBalance), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		for i, col := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 8, col.title, "1", ln, "C", true, 0, "")
		}
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	for _, row := range report.Rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}

		entry := row.Entry
		var in, out string
		if entry.Delta().IsPositive() {
			in = money(entry.Amount)
		} else {
			out = money(entry.Amount)
		}

		cells := []string{
			entry.TransactionDate.UTC().Format("2006-01-02"),
			strings.ToUpper(string(entry.Type)),
			trimTo(entry.Description, 40),
			trimTo(entry.ReferenceNumber, 16),
			in,
			out,
			money(row.RunningBalance),
		}
		for i, col := range pdfColumns {
			ln := 0
			if i == len(pdfColumns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, 7, cells[i], "1", ln, col.align, false, 0, "")
		}
	}

	if !report.GeneratedAt.IsZero() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, "Generated "+report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 0, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func periodLabel(f DateFilter) string {
	if f.IsZero() {
		return "all time"
	}
	return formatBound(f.Start) + " to " + formatBound(f.End)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "."
}
