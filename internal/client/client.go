// Package client talks to the petty-cash backend over its REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/iho/pettycash/internal/adapter/http/dto"
	"github.com/iho/pettycash/internal/infrastructure/logger"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = 200 * time.Millisecond
	defaultConcurrency   = 4

	idempotencyKeyHeader = "Idempotency-Key"
	boardingHouseHeader  = "X-Boarding-House-ID"
)

// Config is everything the client needs. Nothing is read from the
// environment once the client is built.
type Config struct {
	BaseURL         string
	Token           string
	BoardingHouseID string
	Timeout         time.Duration
	MaxRetries      int
	// RetryInterval is the first backoff step.
	RetryInterval time.Duration
	// Concurrency bounds FetchBalances.
	Concurrency int
	HTTPClient  *http.Client
}

// Client is a petty-cash API client. It is safe for concurrent use.
type Client struct {
	baseURL         string
	token           string
	boardingHouseID string
	maxRetries      int
	retryInterval   time.Duration
	concurrency     int
	http            *http.Client
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:         base.String(),
		token:           cfg.Token,
		boardingHouseID: cfg.BoardingHouseID,
		maxRetries:      cfg.MaxRetries,
		retryInterval:   cfg.RetryInterval,
		concurrency:     cfg.Concurrency,
		http:            cfg.HTTPClient,
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	} else if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryInterval <= 0 {
		c.retryInterval = defaultRetryInterval
	}
	if c.concurrency <= 0 {
		c.concurrency = defaultConcurrency
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c, nil
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether the request may succeed if sent again.
func (e *APIError) retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// do sends one logical request, retrying transport failures and 5xx/429
// responses. Mutations carry one idempotency key across all attempts.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var idempotencyKey string
	if method != http.MethodGet {
		idempotencyKey = uuid.NewString()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.send(ctx, method, target, idempotencyKey, payload, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			if !apiErr.retryable() {
				return backoff.Permanent(err)
			}
		case isTransportError(err):
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
		default:
			// Insufficient funds and decode failures are final.
			return backoff.Permanent(err)
		}

		logger.FromContext(ctx).Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Msg("request failed, retrying")
		return err
	}, policy)
}

func (c *Client) send(ctx context.Context, method, target, idempotencyKey string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.boardingHouseID != "" {
		req.Header.Set(boardingHouseHeader, c.boardingHouseID)
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err := w.Write(data)
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns an error body into *domain.InsufficientFundsError when
// it carries a shortfall, and into *APIError otherwise.
func decodeError(status int, data []byte) error {
	if status == http.StatusUnprocessableEntity && bytes.Contains(data, []byte(`"currentBalance"`)) {
		var funds dto.InsufficientFundsResponse
		if err := json.Unmarshal(data, &funds); err == nil {
			return funds.ToDomain()
		}
	}

	apiErr := &APIError{StatusCode: status}
	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Message = body.Error
	if body.Message != "" {
		apiErr.Message += ": " + body.Message
	}
	apiErr.Details = body.Details
	return apiErr
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
