package domain

// MaxBatchLimit caps the number of records one batch run may process.
const MaxBatchLimit = 1000

// DefaultBatchLimit is used when no limit is given.
const DefaultBatchLimit = 100

// SkipReasonAlreadyAdded is reported for records flagged pushed by a concurrent run.
const SkipReasonAlreadyAdded = "already added"

// ItemStatus is the outcome of one record in a batch.
type ItemStatus string

// Item statuses.
const (
	ItemSuccess ItemStatus = "success"
	ItemFailure ItemStatus = "failure"
	ItemSkipped ItemStatus = "skipped"
	ItemDryRun  ItemStatus = "dry_run"
)

// BatchItem reports one record of a batch run.
type BatchItem struct {
	RecordID   int64      `json:"recordId"`
	Status     ItemStatus `json:"status"`
	Reason     string     `json:"reason,omitempty"`
	Mapped     any        `json:"mapped,omitempty"`
	ExternalID string     `json:"externalId,omitempty"`
	HTTPStatus int        `json:"httpStatus,omitempty"`
	Body       string     `json:"body,omitempty"`
	// FlagError is set when the ERP accepted the record but the local
	// pushed flag could not be written. The item still counts as a success.
	FlagError string `json:"flagError,omitempty"`
}

// BatchResult aggregates a batch run. Items are in input order.
type BatchResult struct {
	Kind      RecordKind  `json:"kind"`
	Processed int         `json:"processed"`
	Successes int         `json:"successes"`
	Failures  int         `json:"failures"`
	DryRun    bool        `json:"dryRun"`
	Items     []BatchItem `json:"items"`
}

// Add appends an item and updates the counters.
func (r *BatchResult) Add(item BatchItem) {
	r.Items = append(r.Items, item)
	r.Processed++
	switch item.Status {
	case ItemSuccess:
		r.Successes++
	case ItemFailure:
		r.Failures++
	}
}

// Drifted returns the items whose flag write failed after an ERP success.
func (r *BatchResult) Drifted() []BatchItem {
	var out []BatchItem
	for _, it := range r.Items {
		if it.FlagError != "" {
			out = append(out, it)
		}
	}
	return out
}

// SingleResult reports a push-one call.
type SingleResult struct {
	Mapped  any        `json:"mapped"`
	Created *BatchItem `json:"created,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ClampLimit normalises a requested batch size into [1, MaxBatchLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultBatchLimit
	case limit > MaxBatchLimit:
		return MaxBatchLimit
	default:
		return limit
	}
}
