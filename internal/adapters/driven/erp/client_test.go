package erp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

type capture struct {
	path   string
	auth   string
	ctype  string
	body   map[string]any
	called int
}

func newERPServer(t *testing.T, status int, response string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called++
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		c.ctype = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestClient(baseURL string) *Client {
	return NewClient(domain.ERPSettings{
		APIBaseURL:        baseURL + "/",
		Timeout:           2 * time.Second,
		RequestsPerSecond: 100,
	})
}

func TestClient_CreateEmployee(t *testing.T) {
	srv, c := newERPServer(t, http.StatusCreated, `{"Employee":{"EmployeeId":"E-42"}}`)
	client := newTestClient(srv.URL)

	payload := domain.EmployeePayload{
		FirstName: domain.Some("Ada"),
		LastName:  domain.Some("Lovelace"),
		Email:     domain.Some("ada@example.com"),
	}
	resp, err := client.CreateEmployee(context.Background(), "tok", payload)
	require.NoError(t, err)

	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "E-42", resp.ExternalID)
	assert.Equal(t, PathEmployees, c.path)
	assert.Equal(t, "Bearer tok", c.auth)
	assert.Equal(t, "application/json", c.ctype)

	employee, ok := c.body["Employee"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", employee["FirstName"])
	assert.NotContains(t, employee, "CostCenter")
}

func TestClient_CreateSalaryTransaction_NumericRow(t *testing.T) {
	srv, c := newERPServer(t, http.StatusOK, `{"SalaryTransaction":{"SalaryRow":17}}`)
	client := newTestClient(srv.URL)

	payload := domain.SalaryTransactionPayload{
		EmployeeID: domain.Some("E-42"),
		SalaryCode: domain.Some("11"),
		Date:       domain.Some("2024-05-01"),
		Amount:     domain.Some(1000.0),
	}
	resp, err := client.CreateSalaryTransaction(context.Background(), "tok", payload)
	require.NoError(t, err)

	assert.Equal(t, "17", resp.ExternalID)
	assert.Equal(t, PathSalaryTransactions, c.path)
	tx, ok := c.body["SalaryTransaction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "11", tx["SalaryCode"])
	assert.InDelta(t, 1000.0, tx["Amount"], 0.0001)
}

func TestClient_NonSuccessIsResponse(t *testing.T) {
	srv, _ := newERPServer(t, http.StatusBadRequest, `{"ErrorInformation":{"message":"bad email"}}`)
	client := newTestClient(srv.URL)

	resp, err := client.CreateEmployee(context.Background(), "tok", domain.EmployeePayload{})
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "bad email")
	assert.Empty(t, resp.ExternalID)
}

func TestClient_MissingBaseURL(t *testing.T) {
	client := NewClient(domain.ERPSettings{})

	_, err := client.CreateEmployee(context.Background(), "tok", domain.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigurationMissing))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).CreateEmployee(context.Background(), "tok", domain.EmployeePayload{})
	assert.Error(t, err)
}

func TestClient_TooManyRequestsSetsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRetryAfter, "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(srv.URL)

	resp, err := client.CreateEmployee(context.Background(), "tok", domain.EmployeePayload{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), client.limiter.RetryAt(), 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.CreateEmployee(ctx, "tok", domain.EmployeePayload{})
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	t.Run("observe ignores other statuses", func(t *testing.T) {
		r := NewRateLimiter(10)
		r.Observe(&http.Response{StatusCode: http.StatusOK, Header: http.Header{}})
		assert.True(t, r.RetryAt().IsZero())
	})

	t.Run("default backoff without header", func(t *testing.T) {
		r := NewRateLimiter(10)
		r.Observe(&http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}})
		assert.WithinDuration(t, time.Now().Add(DefaultBackoff), r.RetryAt(), time.Second)
	})

	t.Run("wait respects context", func(t *testing.T) {
		r := NewRateLimiter(10)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, r.Wait(ctx))
	})
}

func TestRawID(t *testing.T) {
	assert.Equal(t, "", rawID(nil))
	assert.Equal(t, "abc", rawID(json.RawMessage(`"abc"`)))
	assert.Equal(t, "12", rawID(json.RawMessage(`12`)))
	assert.Equal(t, "", rawID(json.RawMessage(`{}`)))
}
