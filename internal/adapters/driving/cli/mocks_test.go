package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.Settings
	entries     []domain.SettingEntry
	values      map[string]any
	oauthErr    error
	pushErr     error
	setErr      error
	removedKeys []string
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings.WithDefaults()
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if value == nil {
		m.removedKeys = append(m.removedKeys, key)
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Entries() []domain.SettingEntry { return m.entries }
func (m *mockSettingsService) Path() string                   { return "/tmp/paybridge/config.toml" }
func (m *mockSettingsService) ValidateOAuth() error           { return m.oauthErr }
func (m *mockSettingsService) ValidatePush() error            { return m.pushErr }

// mockAuthFlow implements driving.AuthorizationFlow for testing.
type mockAuthFlow struct {
	status      *domain.AuthStatus
	refresh     *domain.RefreshResult
	err         error
	lastSession domain.SessionID
	loggedOut   bool
}

func (m *mockAuthFlow) BeginLogin(_ context.Context, session domain.SessionID, _ domain.AccountType) (string, error) {
	m.lastSession = session
	return "https://erp.example.com/oauth/authorize?state=s", m.err
}

func (m *mockAuthFlow) CompleteCallback(_ context.Context, session domain.SessionID, _, _ string) error {
	m.lastSession = session
	return m.err
}

func (m *mockAuthFlow) Status(_ context.Context, session domain.SessionID) (*domain.AuthStatus, error) {
	m.lastSession = session
	return m.status, m.err
}

func (m *mockAuthFlow) Refresh(_ context.Context, session domain.SessionID) (*domain.RefreshResult, error) {
	m.lastSession = session
	return m.refresh, m.err
}

func (m *mockAuthFlow) Logout(_ context.Context, session domain.SessionID) error {
	m.lastSession = session
	m.loggedOut = m.err == nil
	return m.err
}

// mockBatchSync implements driving.BatchSync for testing.
type mockBatchSync struct {
	batch    *domain.BatchResult
	single   *domain.SingleResult
	err      error
	lastReq  driving.BatchRequest
	lastKind domain.RecordKind
	lastID   int64
}

func (m *mockBatchSync) PushPersonnelBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindPersonnel
	return m.batch, m.err
}

func (m *mockBatchSync) PushCompensationBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindCompensation
	return m.batch, m.err
}

func (m *mockBatchSync) PushPersonnel(
	_ context.Context, session domain.SessionID, orgID string, id int64,
) (*domain.SingleResult, error) {
	m.lastReq = driving.BatchRequest{Session: session, OrgID: orgID}
	m.lastKind, m.lastID = domain.KindPersonnel, id
	return m.single, m.err
}

func (m *mockBatchSync) PushCompensation(
	_ context.Context, session domain.SessionID, orgID string, id int64,
) (*domain.SingleResult, error) {
	m.lastReq = driving.BatchRequest{Session: session, OrgID: orgID}
	m.lastKind, m.lastID = domain.KindCompensation, id
	return m.single, m.err
}

// mockSalaryService implements driving.SalaryService for testing.
type mockSalaryService struct {
	people []domain.SalaryPerson
	err    error
}

func (m *mockSalaryService) ComputeUnpaidSalaries(_ context.Context, _ string) ([]domain.SalaryPerson, error) {
	return m.people, m.err
}

// mockBankFileService implements driving.BankFileService for testing.
type mockBankFileService struct {
	file     *domain.PaymentFile
	err      error
	lastOrg  string
	lastDate time.Time
}

func (m *mockBankFileService) Export(_ context.Context, orgID string, date time.Time) (*domain.PaymentFile, error) {
	m.lastOrg, m.lastDate = orgID, date
	return m.file, m.err
}

// mockOrgService implements driving.OrgService for testing.
type mockOrgService struct {
	provisioned []string
	err         error
}

func (m *mockOrgService) Provision(_ context.Context, orgID string) error {
	if m.err != nil {
		return m.err
	}
	m.provisioned = append(m.provisioned, orgID)
	return nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) RunOnce(_ context.Context) []*domain.BatchResult { return nil }

// setupServices installs s and resets command flags; the returned func restores the previous state.
func setupServices(s *Services) func() {
	old := Services{
		Settings: settingsService,
		Auth:     authFlow,
		Batch:    batchSync,
		Salary:   salaryService,
		BankFile: bankFileService,
		Org:      orgService,
		Serve:    serveConfig,
	}
	settingsService, authFlow, batchSync = nil, nil, nil
	salaryService, bankFileService, orgService, serveConfig = nil, nil, nil, nil
	SetServices(s)
	resetFlags()
	return func() {
		SetServices(&old)
		resetFlags()
		rootCmd.SetArgs(nil)
	}
}

func resetFlags() {
	sessionFlag = string(domain.DefaultPushSession)
	globalOpts = Options{}
	pushOrg, pushID, pushLimit, pushDryRun, pushJSON = "", 0, 0, false, false
	salaryOrg, salaryJSON = "", false
	bankfileOrg, bankfileDate, bankfileOut = "", "", "."
	configJSON = false
	versionShort = false
	mcpPort = 0
	serveAddr = ""
	loginAccountType, loginNoBrowser, loginTimeout = "", false, 5*time.Minute
}
