package ledger

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/iho/pettycash/internal/domain"
)

// CSVHeader is the column layout of ledger exports.
var CSVHeader = []string{"Date", "Type", "Description", "Reference", "Amount In", "Amount Out", "Balance Change", "Status"}

// WriteCSV writes one row per report row. Amounts use two decimals.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.Rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Entry.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRecord(row domain.RunningBalanceRow) []string {
	entry := row.Entry

	var in, out string
	if entry.Type == domain.EntryTypeIssuance {
		in = entry.Amount.StringFixed(2)
	} else {
		out = entry.Amount.StringFixed(2)
	}

	return []string{
		entry.TransactionDate.UTC().Format("2006-01-02"),
		string(entry.Type),
		entry.Description,
		entry.ReferenceNumber,
		in,
		out,
		formatSigned(entry),
		string(entry.Status),
	}
}

func formatSigned(entry domain.LedgerEntry) string {
	delta := entry.Delta()
	if delta.IsPositive() {
		return "+" + delta.StringFixed(2)
	}
	return delta.StringFixed(2)
}
