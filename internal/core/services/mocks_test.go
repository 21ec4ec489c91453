package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

const testSession domain.SessionID = "session-1"

// mockTokenClient is a scripted token endpoint.
type mockTokenClient struct {
	mu            sync.Mutex
	exchangeGrant *domain.TokenGrant
	exchangeErr   error
	refreshGrant  *domain.TokenGrant
	refreshErr    error
	exchanged     []string
	refreshed     []string
	lastState     string
}

func (m *mockTokenClient) AuthCodeURL(state string, accountType domain.AccountType) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastState = state
	return "https://erp.example.com/oauth/authorize?state=" + state + "&account_type=" + string(accountType)
}

func (m *mockTokenClient) Exchange(_ context.Context, code string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanged = append(m.exchanged, code)
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	g := *m.exchangeGrant
	return &g, nil
}

func (m *mockTokenClient) Refresh(_ context.Context, refreshToken string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, refreshToken)
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	g := *m.refreshGrant
	return &g, nil
}

var _ driven.TokenClient = (*mockTokenClient)(nil)

// mockERP records submissions and answers with a scripted response.
type mockERP struct {
	mu          sync.Mutex
	respond     func(n int) (*domain.ERPResponse, error)
	employees   []domain.EmployeePayload
	salaryTx    []domain.SalaryTransactionPayload
	tokens      []string
	onSubmitted func()
}

func (m *mockERP) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.employees) + len(m.salaryTx)
}

func (m *mockERP) answer(token string) (*domain.ERPResponse, error) {
	m.tokens = append(m.tokens, token)
	n := len(m.employees) + len(m.salaryTx)
	if m.onSubmitted != nil {
		m.onSubmitted()
	}
	if m.respond == nil {
		return &domain.ERPResponse{StatusCode: 201, ExternalID: "ext-" + string(rune('0'+n))}, nil
	}
	return m.respond(n)
}

func (m *mockERP) CreateEmployee(
	_ context.Context, token string, p domain.EmployeePayload,
) (*domain.ERPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append(m.employees, p)
	return m.answer(token)
}

func (m *mockERP) CreateSalaryTransaction(
	_ context.Context, token string, p domain.SalaryTransactionPayload,
) (*domain.ERPResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.salaryTx = append(m.salaryTx, p)
	return m.answer(token)
}

var _ driven.ERPClient = (*mockERP)(nil)

// recordingPublisher keeps published events.
type recordingPublisher struct {
	mu        sync.Mutex
	events    []driven.Event
	deadlines []bool
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, e driven.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	_, ok := ctx.Deadline()
	p.deadlines = append(p.deadlines, ok)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingUpdateStore rejects every UpdateByID.
type failingUpdateStore struct {
	driven.RecordStore
}

func (s *failingUpdateStore) UpdateByID(context.Context, string, int64, domain.Row) error {
	return errors.New("connection reset")
}

// racingStore flags the listed rows in hook right after a batch listing,
// as a concurrent run would.
type racingStore struct {
	driven.RecordStore
	hook func(rows []domain.Row)
}

func (s *racingStore) Filter(ctx context.Context, table string, q driven.Query) ([]domain.Row, error) {
	rows, err := s.RecordStore.Filter(ctx, table, q)
	if err == nil && s.hook != nil && len(q.Where) > 0 && q.Where[0].Op == driven.OpNotTrue {
		hook := s.hook
		s.hook = nil
		hook(rows)
	}
	return rows, err
}

func oauthConfig() map[string]any {
	return map[string]any{
		KeyERPClientID:     "client-id",
		KeyERPClientSecret: "client-secret",
		KeyERPRedirectURI:  "http://localhost:8380/oauth/callback",
		KeyERPAuthURL:      "https://erp.example.com/oauth/authorize",
		KeyERPTokenURL:     "https://erp.example.com/oauth/token",
		KeyERPAPIBaseURL:   "https://api.erp.example.com/v1",
	}
}

func newSettings(t *testing.T, values map[string]any) *SettingsService {
	t.Helper()
	store := memory.NewConfigStore()
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}
	return NewSettingsService(store)
}

func newOrgStore(t *testing.T, orgID string) *memory.RecordStore {
	t.Helper()
	store := memory.NewRecordStore()
	require.NoError(t, NewOrgService(store).Provision(context.Background(), orgID))
	return store
}

func insert(t *testing.T, store driven.RecordStore, table string, row domain.Row) int64 {
	t.Helper()
	saved, err := store.Insert(context.Background(), table, row)
	require.NoError(t, err)
	return domain.RowID(saved)
}

func authorizedVault(t *testing.T) *TokenVault {
	t.Helper()
	vault := NewTokenVault(memory.NewCredentialStore(), &mockTokenClient{})
	_, err := vault.Store(context.Background(), testSession, domain.TokenGrant{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Hour / time.Second),
	})
	require.NoError(t, err)
	return vault
}
