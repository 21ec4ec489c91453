package driving

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// BatchRequest selects the records of one push run.
type BatchRequest struct {
	Session domain.SessionID
	OrgID   string
	// Limit is clamped to [1, domain.MaxBatchLimit]; zero means the default.
	Limit  int
	DryRun bool
}

// BatchSync pushes personnel and compensation records to the ERP.
// Records already flagged pushed are never submitted again.
type BatchSync interface {
	// PushPersonnelBatch pushes unflagged personnel records in primary key order.
	PushPersonnelBatch(ctx context.Context, req BatchRequest) (*domain.BatchResult, error)

	// PushCompensationBatch pushes unflagged compensation records in primary key order.
	PushCompensationBatch(ctx context.Context, req BatchRequest) (*domain.BatchResult, error)

	// PushPersonnel pushes one personnel record by id.
	PushPersonnel(ctx context.Context, session domain.SessionID, orgID string, id int64) (*domain.SingleResult, error)

	// PushCompensation pushes one compensation record by id.
	PushCompensation(ctx context.Context, session domain.SessionID, orgID string, id int64) (*domain.SingleResult, error)
}
