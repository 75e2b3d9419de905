// Package api is the typed client of the case backend. Every failure leaving
// this package is one of NotFoundError, TransportError, ExecutionError or
// InvalidResponseError.
package api

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

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Config holds the client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
}

// RetryConfig configures retry behavior for transport failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config pointing at a local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 300 * time.Millisecond,
			MaxWait:     3 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base url %q: missing host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("api retry max attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("api"),
	}
}

func (c *Client) GetCaseSchema(ctx context.Context, caseID string) ([]TableSchema, error) {
	const op = "get case schema"
	raw, err := c.get(ctx, op, "/case/"+url.PathEscape(caseID)+"/schema", caseID, "schema-data")
	if err != nil {
		return nil, err
	}
	tables, err := decodeTables[TableSchema](raw)
	if err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return tables, nil
}

func (c *Client) GetCaseData(ctx context.Context, caseID string) ([]TableData, error) {
	const op = "get case data"
	raw, err := c.get(ctx, op, "/case/"+url.PathEscape(caseID)+"/data", caseID, "case-data")
	if err != nil {
		return nil, err
	}
	tables, err := decodeTables[TableData](raw)
	if err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return tables, nil
}

func (c *Client) ExecuteSQL(ctx context.Context, query, caseID string) (*QueryResult, error) {
	const op = "execute sql"
	raw, err := c.post(ctx, op, "/execute-sql", QueryRequest{Query: query, CaseID: caseID}, "query-result", msgExecuteFailed)
	if err != nil {
		return nil, err
	}

	var res QueryResult
	if err := decodeJSON(raw, &res); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	if res.Columns == nil {
		res.Columns = []string{}
	}
	if res.Rows == nil {
		res.Rows = []Row{}
	}
	if err := checkRowShape(&res); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return &res, nil
}

func (c *Client) CheckSolution(ctx context.Context, query, caseID string) (*CheckResult, error) {
	const op = "check solution"
	raw, err := c.post(ctx, op, "/check-solution", QueryRequest{Query: query, CaseID: caseID}, "check-result", msgCheckFailed)
	if err != nil {
		return nil, err
	}

	var res CheckResult
	if err := decodeJSON(raw, &res); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return &res, nil
}

// Health queries the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	const op = "health"
	raw, err := c.get(ctx, op, "/health", "", "health")
	if err != nil {
		return nil, err
	}
	var h HealthInfo
	if err := decodeJSON(raw, &h); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return &h, nil
}

// get performs a GET. A 404 is NotFound; any other non-2xx is a server
// failure and reported as a TransportError.
func (c *Client) get(ctx context.Context, op, path, caseID, schemaName string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	status, raw, err := c.do(op, req)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &NotFoundError{CaseID: caseID}
	case status < 200 || status > 299:
		return nil, &TransportError{Op: op, Status: status, Err: errors.New(detailOr(raw, http.StatusText(status)))}
	}

	if err := validateBody(schemaName, raw); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return raw, nil
}

// post performs a POST with a JSON body. Every non-2xx answer becomes an
// ExecutionError carrying the body's detail, or fallback when there is none.
func (c *Client) post(ctx context.Context, op, path string, body any, schemaName, fallback string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, raw, err := c.do(op, req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &ExecutionError{Status: status, Message: detailOr(raw, fallback)}
	}

	if err := validateBody(schemaName, raw); err != nil {
		return nil, &InvalidResponseError{Op: op, Err: err}
	}
	return raw, nil
}

func (c *Client) do(op string, req *http.Request) (int, []byte, error) {
	log := c.logger.With(zap.String("op", op), zap.String("method", req.Method), zap.String("path", req.URL.Path))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("read response body failed", zap.Error(err))
		return 0, nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)))
	return resp.StatusCode, raw, nil
}
