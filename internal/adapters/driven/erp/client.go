// Package erp implements the REST client for the external payroll ERP.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// API paths relative to the configured base URL.
const (
	PathEmployees          = "/employees"
	PathSalaryTransactions = "/salarytransactions"
)

// maxBodyBytes caps how much of a response is kept.
const maxBodyBytes = 1 << 20

// Ensure Client implements the interface.
var _ driven.ERPClient = (*Client)(nil)

// Client posts records to the ERP with a bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *RateLimiter
}

// NewClient creates an ERP client from settings.
func NewClient(erp domain.ERPSettings) *Client {
	timeout := erp.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultERPTimeout
	}
	rps := erp.RequestsPerSecond
	if rps <= 0 {
		rps = domain.DefaultRequestsPerSecond
	}
	return &Client{
		baseURL:    strings.TrimRight(erp.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		limiter:    NewRateLimiter(rps),
	}
}

type employeeEnvelope struct {
	Employee struct {
		EmployeeID json.RawMessage `json:"EmployeeId"`
	} `json:"Employee"`
}

type salaryTransactionEnvelope struct {
	SalaryTransaction struct {
		SalaryRow json.RawMessage `json:"SalaryRow"`
	} `json:"SalaryTransaction"`
}

// CreateEmployee posts an employee payload.
func (c *Client) CreateEmployee(
	ctx context.Context, accessToken string, payload domain.EmployeePayload,
) (*domain.ERPResponse, error) {
	resp, err := c.post(ctx, accessToken, PathEmployees, map[string]any{"Employee": payload})
	if err != nil || !resp.IsSuccess() {
		return resp, err
	}
	var env employeeEnvelope
	if json.Unmarshal(resp.Body, &env) == nil {
		resp.ExternalID = rawID(env.Employee.EmployeeID)
	}
	return resp, nil
}

// CreateSalaryTransaction posts a salary transaction payload.
func (c *Client) CreateSalaryTransaction(
	ctx context.Context, accessToken string, payload domain.SalaryTransactionPayload,
) (*domain.ERPResponse, error) {
	resp, err := c.post(ctx, accessToken, PathSalaryTransactions, map[string]any{"SalaryTransaction": payload})
	if err != nil || !resp.IsSuccess() {
		return resp, err
	}
	var env salaryTransactionEnvelope
	if json.Unmarshal(resp.Body, &env) == nil {
		resp.ExternalID = rawID(env.SalaryTransaction.SalaryRow)
	}
	return resp, nil
}

// post sends one JSON request. Any HTTP answer yields a response;
// only transport failures return an error.
func (c *Client) post(ctx context.Context, accessToken, path string, body any) (*domain.ERPResponse, error) {
	if c.baseURL == "" {
		return nil, &domain.MissingSettingsError{Keys: []string{"erp.api_base_url"}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.limiter.Observe(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &domain.ERPResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// rawID renders a JSON string or number id as text.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}
