package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/resumebot/internal/schema"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// HTTPClient talks to the analysis service over its JSON wire contract.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout *time.Duration
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. The client is never
// modified; WithTimeout applies to a copy.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.timeout = &d }
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c
}

func (c *HTTPClient) ScanResume(ctx context.Context, resumeText string) (ScanResult, error) {
	var out ScanResult
	err := c.post(ctx, OpScanResume, map[string]any{"resume": resumeText}, scanSchema, &out)
	return out, err
}

func (c *HTTPClient) GenerateTest(ctx context.Context, skills []string) (TestResult, error) {
	var out TestResult
	err := c.post(ctx, OpGenerateTest, map[string]any{"skills": nonNil(skills)}, testSchema, &out)
	return out, err
}

func (c *HTTPClient) EvaluateTest(ctx context.Context, answers []string) (Evaluation, error) {
	var out Evaluation
	err := c.post(ctx, OpEvaluateTest, map[string]any{"answers": nonNil(answers)}, evaluationSchema, &out)
	return out, err
}

// Health is the /healthz reply.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health probes GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) (Health, error) {
	const op Op = "healthz"
	var h Health

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return h, fmt.Errorf("build request: %w", err)
	}
	body, status, err := c.do(op, req)
	if err != nil {
		return h, err
	}
	if status/100 != 2 {
		return h, remoteError(op, status, body)
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return h, &ErrInvalidResponse{Op: op, Body: body, Err: err}
	}
	return h, nil
}

func (c *HTTPClient) post(ctx context.Context, op Op, payload any, def map[string]any, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+string(op), bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(op, req)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return remoteError(op, status, body)
	}

	if err := schema.Validate("analysis-"+string(op), def, body); err != nil {
		return &ErrInvalidResponse{Op: op, Body: body, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ErrInvalidResponse{Op: op, Body: body, Err: err}
	}
	return nil
}

func (c *HTTPClient) do(op Op, req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, resp.StatusCode, nil
}

// remoteError extracts {"error": "..."} from a failure body. Bodies that
// are not in that shape yield a RemoteError with an empty message.
func remoteError(op Op, status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &RemoteError{Op: op, StatusCode: status, Message: strings.TrimSpace(eb.Error)}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
