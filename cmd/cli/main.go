package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/client"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/ledger"
)

// app holds the persistent flags shared by every command.
type app struct {
	baseURL       string
	token         string
	boardingHouse string
	timeout       time.Duration
	retries       int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "pettycash",
		Short:         "Petty cash CLI tool",
		Long:          `A command line interface for the petty cash ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.baseURL, "url", envOr("PETTYCASH_URL", "http://localhost:8080"), "Base URL of the petty cash API")
	flags.StringVar(&a.token, "token", os.Getenv("PETTYCASH_TOKEN"), "Bearer token")
	flags.StringVar(&a.boardingHouse, "boarding-house", os.Getenv("PETTYCASH_BOARDING_HOUSE"), "Boarding house to work on")
	flags.DurationVar(&a.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.IntVar(&a.retries, "retries", 3, "Retries for failed requests")

	rootCmd.AddCommand(
		accountsCmd(a),
		balancesCmd(a),
		entriesCmd(a),
		ledgerCmd(a),
		cashCmd(a),
		requestsCmd(a),
		tokenCmd(),
	)

	return rootCmd
}

func (a *app) client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:         a.baseURL,
		Token:           a.token,
		BoardingHouseID: a.boardingHouse,
		Timeout:         a.timeout,
		MaxRetries:      a.retries,
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// describeError spells out a shortfall so the operator sees how much is missing.
func describeError(err error) string {
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		return fmt.Sprintf("Insufficient funds in %s: balance %s, required %s, short by %s",
			funds.AccountName,
			funds.CurrentBalance.StringFixed(2),
			funds.RequiredAmount.StringFixed(2),
			funds.Shortfall().StringFixed(2))
	}
	return "Error: " + err.Error()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", flag, value)
	}
	return d, nil
}

func parseFilter(start, end string) (ledger.DateFilter, error) {
	var filter ledger.DateFilter
	var err error

	if start != "" {
		if filter.Start, err = ledger.ParseDate(start); err != nil {
			return filter, fmt.Errorf("--start: %w", err)
		}
	}
	if end != "" {
		if filter.End, err = ledger.ParseDate(end); err != nil {
			return filter, fmt.Errorf("--end: %w", err)
		}
	}
	return filter, filter.Validate()
}

// parseLineItems reads "name=amount" pairs.
func parseLineItems(items []string) ([]dto.LineItemRequest, error) {
	out := make([]dto.LineItemRequest, 0, len(items))
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--item %q: want name=amount", item)
		}
		amount, err := parseAmount("item", value)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.LineItemRequest{Name: name, Amount: amount})
	}
	return out, nil
}
