package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// ERPClient submits records to the ERP API.
type ERPClient interface {
	// CreateEmployee posts an employee payload.
	// A non-nil response is returned for every answer the server gave, 2xx or not;
	// the error is reserved for transport failures.
	CreateEmployee(ctx context.Context, accessToken string, payload domain.EmployeePayload) (*domain.ERPResponse, error)

	// CreateSalaryTransaction posts a salary transaction payload.
	CreateSalaryTransaction(
		ctx context.Context, accessToken string, payload domain.SalaryTransactionPayload,
	) (*domain.ERPResponse, error)
}

// PaymentFileEncoder serializes salaries into an interbank payment document.
type PaymentFileEncoder interface {
	Encode(salaries []domain.SalaryPerson, debtor domain.DebtorInfo, executionDate time.Time) (*domain.PaymentFile, error)
}

// Event is a notification about a finished batch or a drifted record.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Event types.
const (
	EventBatchCompleted = "batch.completed"
	EventFlagDrift      = "record.flag_drift"
)

// EventPublisher delivers events to operators. Failures never affect a batch.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
