package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// SalaryService computes salaries from unpushed compensation records.
type SalaryService interface {
	// ComputeUnpaidSalaries aggregates unflagged compensation per employee.
	ComputeUnpaidSalaries(ctx context.Context, orgID string) ([]domain.SalaryPerson, error)
}

// BankFileService produces payment files for computed salaries.
type BankFileService interface {
	// Export encodes the organization's unpaid salaries. A zero executionDate
	// selects the next pay day.
	Export(ctx context.Context, orgID string, executionDate time.Time) (*domain.PaymentFile, error)
}

// OrgService manages per-organization tables.
type OrgService interface {
	// Provision creates the organization's record tables if missing.
	Provision(ctx context.Context, orgID string) error
}
