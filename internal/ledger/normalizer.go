package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pettycash/internal/domain"
)

// Field aliases seen on backend payloads. The first match wins.
var (
	idKeys          = []string{"id"}
	accountKeys     = []string{"account_id", "accountId", "petty_cash_account_id"}
	typeKeys        = []string{"type", "transaction_type", "transactionType"}
	issuanceKeys    = []string{"amount"}
	expenseKeys     = []string{"expense_amount", "expenseAmount"}
	dateKeys        = []string{"transaction_date", "transactionDate", "date"}
	descriptionKeys = []string{"description", "purpose"}
	referenceKeys   = []string{"reference_number", "referenceNumber", "receipt_number", "receiptNumber"}
	receiptKeys     = []string{"receipt_number", "receiptNumber"}
	notesKeys       = []string{"notes"}
	statusKeys      = []string{"status"}
	categoryKeys    = []string{"category"}
	vendorKeys      = []string{"vendor"}
	createdKeys     = []string{"created_at", "createdAt"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts one raw backend record into a LedgerEntry.
// It returns *domain.MalformedRecordError when the record cannot be read.
func Normalize(raw map[string]any) (domain.LedgerEntry, error) {
	if raw == nil {
		return domain.LedgerEntry{}, &domain.MalformedRecordError{Reason: "record is empty"}
	}

	typeValue, ok := lookupString(raw, typeKeys)
	if !ok || typeValue == "" {
		return domain.LedgerEntry{}, &domain.MalformedRecordError{Field: "type", Reason: "missing"}
	}
	entryType := domain.EntryType(strings.ToLower(typeValue))
	if !entryType.IsValid() {
		return domain.LedgerEntry{}, &domain.MalformedRecordError{Field: "type", Reason: fmt.Sprintf("unknown type %q", typeValue)}
	}

	amountKeys := issuanceKeys
	if entryType == domain.EntryTypeExpense {
		amountKeys = expenseKeys
	}
	amount, err := lookupAmount(raw, amountKeys)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	date, err := lookupTime(raw, dateKeys, true)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	createdAt, err := lookupTime(raw, createdKeys, false)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	status, err := lookupStatus(raw, entryType)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	entry := domain.LedgerEntry{
		Type:            entryType,
		Amount:          amount,
		TransactionDate: date,
		Status:          status,
		CreatedAt:       createdAt,
	}
	entry.ID, _ = lookupString(raw, idKeys)
	entry.AccountID, _ = lookupString(raw, accountKeys)
	entry.Description, _ = lookupString(raw, descriptionKeys)
	entry.ReferenceNumber, _ = lookupString(raw, referenceKeys)
	entry.ReceiptNumber, _ = lookupString(raw, receiptKeys)
	entry.Notes, _ = lookupString(raw, notesKeys)
	entry.Category, _ = lookupString(raw, categoryKeys)
	entry.Vendor, _ = lookupString(raw, vendorKeys)

	return entry, nil
}

// NormalizeAll normalizes a batch. One malformed record rejects the batch.
func NormalizeAll(raws []map[string]any) ([]domain.LedgerEntry, error) {
	entries := make([]domain.LedgerEntry, 0, len(raws))
	for i, raw := range raws {
		entry, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func lookup(raw map[string]any, keys []string) (string, any, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return key, v, true
		}
	}
	return "", nil, false
}

func lookupString(raw map[string]any, keys []string) (string, bool) {
	_, v, ok := lookup(raw, keys)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

func lookupAmount(raw map[string]any, keys []string) (decimal.Decimal, error) {
	key, v, ok := lookup(raw, keys)
	if !ok {
		return decimal.Zero, &domain.MalformedRecordError{Field: keys[0], Reason: "missing"}
	}

	var (
		amount decimal.Decimal
		err    error
	)
	switch val := v.(type) {
	case json.Number:
		amount, err = decimal.NewFromString(val.String())
	case string:
		amount, err = decimal.NewFromString(strings.TrimSpace(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, &domain.MalformedRecordError{Field: key, Reason: fmt.Sprintf("not numeric: %v", val)}
		}
		amount = decimal.NewFromFloat(val)
	case int:
		amount = decimal.NewFromInt(int64(val))
	case int64:
		amount = decimal.NewFromInt(val)
	case decimal.Decimal:
		amount = val
	default:
		return decimal.Zero, &domain.MalformedRecordError{Field: key, Reason: fmt.Sprintf("not numeric: %T", v)}
	}
	if err != nil {
		return decimal.Zero, &domain.MalformedRecordError{Field: key, Reason: fmt.Sprintf("not numeric: %v", v)}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &domain.MalformedRecordError{Field: key, Reason: "must be strictly positive, got " + amount.String()}
	}

	return amount, nil
}

func lookupTime(raw map[string]any, keys []string, required bool) (time.Time, error) {
	value, ok := lookupString(raw, keys)
	if !ok || value == "" {
		if required {
			return time.Time{}, &domain.MalformedRecordError{Field: keys[0], Reason: "missing"}
		}
		return time.Time{}, nil
	}

	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &domain.MalformedRecordError{Field: keys[0], Reason: err.Error()}
	}
	return t, nil
}

func lookupStatus(raw map[string]any, entryType domain.EntryType) (domain.EntryStatus, error) {
	value, ok := lookupString(raw, statusKeys)
	if !ok || value == "" {
		if entryType == domain.EntryTypeIssuance {
			return domain.EntryStatusIssued, nil
		}
		return domain.EntryStatusApproved, nil
	}

	status := domain.EntryStatus(strings.ToLower(value))
	switch status {
	case domain.EntryStatusPending, domain.EntryStatusApproved, domain.EntryStatusIssued, domain.EntryStatusRejected:
		return status, nil
	default:
		return "", &domain.MalformedRecordError{Field: "status", Reason: fmt.Sprintf("unknown status %q", value)}
	}
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Results are in UTC.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
