package mcp

import (
	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Salary computes unpaid salaries.
	Salary driving.SalaryService

	// Batch pushes records to the ERP.
	Batch driving.BatchSync

	// Auth reports the authorization state. Optional.
	Auth driving.AuthorizationFlow

	// BankFile exports payment files. Optional.
	BankFile driving.BankFileService

	// Session owns the credential every tool call uses.
	Session domain.SessionID
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Salary == nil {
		return ErrMissingSalaryService
	}
	if p.Batch == nil {
		return ErrMissingBatchSync
	}
	if p.Session == "" {
		p.Session = domain.DefaultPushSession
	}
	return nil
}
