package driving

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// Scheduler runs batch pushes in the background.
type Scheduler interface {
	// Start begins running scheduled pushes.
	// Blocks until Stop is called or the context is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop after the current run.
	Stop() error

	// RunOnce pushes every configured organization immediately.
	RunOnce(ctx context.Context) []*domain.BatchResult
}
