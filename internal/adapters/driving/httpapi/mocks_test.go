package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

type mockAuthFlow struct {
	beginErr    error
	completeErr error
	status      *domain.AuthStatus
	refresh     *domain.RefreshResult
	refreshErr  error

	accountType   domain.AccountType
	beganFor      domain.SessionID
	completedFor  domain.SessionID
	code, state   string
	statusFor     domain.SessionID
	loggedOut     domain.SessionID
	refreshCalled bool
}

func (m *mockAuthFlow) BeginLogin(_ context.Context, session domain.SessionID, accountType domain.AccountType) (string, error) {
	m.beganFor, m.accountType = session, accountType
	if m.beginErr != nil {
		return "", m.beginErr
	}
	return "https://erp.example/authorize?state=abc", nil
}

func (m *mockAuthFlow) CompleteCallback(_ context.Context, session domain.SessionID, code, state string) error {
	m.completedFor, m.code, m.state = session, code, state
	return m.completeErr
}

func (m *mockAuthFlow) Status(_ context.Context, session domain.SessionID) (*domain.AuthStatus, error) {
	m.statusFor = session
	if m.status != nil {
		return m.status, nil
	}
	return &domain.AuthStatus{}, nil
}

func (m *mockAuthFlow) Refresh(_ context.Context, _ domain.SessionID) (*domain.RefreshResult, error) {
	m.refreshCalled = true
	return m.refresh, m.refreshErr
}

func (m *mockAuthFlow) Logout(_ context.Context, session domain.SessionID) error {
	m.loggedOut = session
	return nil
}

type mockBatchSync struct {
	batch  *domain.BatchResult
	single *domain.SingleResult
	err    error

	lastReq    driving.BatchRequest
	lastKind   domain.RecordKind
	lastID     int64
	lastOrg    string
	lastSess   domain.SessionID
	batchCalls int
}

func (m *mockBatchSync) PushPersonnelBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindPersonnel
	m.batchCalls++
	return m.batch, m.err
}

func (m *mockBatchSync) PushCompensationBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindCompensation
	m.batchCalls++
	return m.batch, m.err
}

func (m *mockBatchSync) PushPersonnel(_ context.Context, session domain.SessionID, orgID string, id int64) (*domain.SingleResult, error) {
	m.lastKind, m.lastSess, m.lastOrg, m.lastID = domain.KindPersonnel, session, orgID, id
	return m.single, m.err
}

func (m *mockBatchSync) PushCompensation(_ context.Context, session domain.SessionID, orgID string, id int64) (*domain.SingleResult, error) {
	m.lastKind, m.lastSess, m.lastOrg, m.lastID = domain.KindCompensation, session, orgID, id
	return m.single, m.err
}

type mockSalaryService struct {
	people []domain.SalaryPerson
	err    error
	org    string
}

func (m *mockSalaryService) ComputeUnpaidSalaries(_ context.Context, orgID string) ([]domain.SalaryPerson, error) {
	m.org = orgID
	return m.people, m.err
}

type mockBankFileService struct {
	file *domain.PaymentFile
	err  error
	date time.Time
}

func (m *mockBankFileService) Export(_ context.Context, _ string, executionDate time.Time) (*domain.PaymentFile, error) {
	m.date = executionDate
	return m.file, m.err
}

type mockSettingsService struct {
	settings *domain.Settings
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.settings == nil {
		s := domain.Settings{}.WithDefaults()
		return &s, nil
	}
	return m.settings, nil
}

func (m *mockSettingsService) Set(string, any) error          { return nil }
func (m *mockSettingsService) Entries() []domain.SettingEntry { return nil }
func (m *mockSettingsService) Path() string                   { return ":memory:" }
func (m *mockSettingsService) ValidateOAuth() error           { return nil }
func (m *mockSettingsService) ValidatePush() error            { return nil }

type fixture struct {
	auth     *mockAuthFlow
	batch    *mockBatchSync
	salary   *mockSalaryService
	bankFile *mockBankFileService
	settings *mockSettingsService
	server   *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:     &mockAuthFlow{},
		batch:    &mockBatchSync{},
		salary:   &mockSalaryService{},
		bankFile: &mockBankFileService{},
		settings: &mockSettingsService{},
	}
	srv, err := NewServer(&Ports{
		Auth:     f.auth,
		Batch:    f.batch,
		Salary:   f.salary,
		BankFile: f.bankFile,
		Settings: f.settings,
	}, "0123456789abcdef0123456789abcdef", nil)
	require.NoError(t, err)
	f.server = srv
	return f
}

// do sends a request through the router, replaying cookies when given.
func (f *fixture) do(method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

// login issues a session cookie through the login route.
func (f *fixture) login(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := f.do(http.MethodGet, "/oauth/login")
	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}
