package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// mockSalaryService is a mock implementation of driving.SalaryService.
type mockSalaryService struct {
	people  []domain.SalaryPerson
	err     error
	lastOrg string
}

func (m *mockSalaryService) ComputeUnpaidSalaries(_ context.Context, orgID string) ([]domain.SalaryPerson, error) {
	m.lastOrg = orgID
	return m.people, m.err
}

// mockBatchSync is a mock implementation of driving.BatchSync.
type mockBatchSync struct {
	result   *domain.BatchResult
	err      error
	lastReq  driving.BatchRequest
	lastKind domain.RecordKind
}

func (m *mockBatchSync) PushPersonnelBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindPersonnel
	return m.result, m.err
}

func (m *mockBatchSync) PushCompensationBatch(_ context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	m.lastReq, m.lastKind = req, domain.KindCompensation
	return m.result, m.err
}

func (m *mockBatchSync) PushPersonnel(
	_ context.Context, _ domain.SessionID, _ string, _ int64,
) (*domain.SingleResult, error) {
	return nil, m.err
}

func (m *mockBatchSync) PushCompensation(
	_ context.Context, _ domain.SessionID, _ string, _ int64,
) (*domain.SingleResult, error) {
	return nil, m.err
}

// mockAuthFlow is a mock implementation of driving.AuthorizationFlow.
type mockAuthFlow struct {
	status      *domain.AuthStatus
	err         error
	lastSession domain.SessionID
}

func (m *mockAuthFlow) BeginLogin(_ context.Context, _ domain.SessionID, _ domain.AccountType) (string, error) {
	return "", m.err
}

func (m *mockAuthFlow) CompleteCallback(_ context.Context, _ domain.SessionID, _, _ string) error {
	return m.err
}

func (m *mockAuthFlow) Status(_ context.Context, session domain.SessionID) (*domain.AuthStatus, error) {
	m.lastSession = session
	return m.status, m.err
}

func (m *mockAuthFlow) Refresh(_ context.Context, _ domain.SessionID) (*domain.RefreshResult, error) {
	return nil, m.err
}

func (m *mockAuthFlow) Logout(_ context.Context, _ domain.SessionID) error {
	return m.err
}

// mockBankFileService is a mock implementation of driving.BankFileService.
type mockBankFileService struct {
	file     *domain.PaymentFile
	err      error
	lastDate time.Time
}

func (m *mockBankFileService) Export(_ context.Context, _ string, executionDate time.Time) (*domain.PaymentFile, error) {
	m.lastDate = executionDate
	return m.file, m.err
}

func requiredPorts() *Ports {
	return &Ports{
		Salary: &mockSalaryService{},
		Batch:  &mockBatchSync{},
	}
}
