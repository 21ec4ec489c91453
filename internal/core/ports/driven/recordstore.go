package driven

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// FilterOp is a comparison used by record store queries.
type FilterOp string

// Supported filter operations.
const (
	// OpEq matches column = value.
	OpEq FilterOp = "eq"
	// OpNotTrue matches rows where a flag column is false or unset.
	OpNotTrue FilterOp = "not_true"
)

// Condition is one filter term. Value is ignored for OpNotTrue.
type Condition struct {
	Column string
	Op     FilterOp
	Value  any
}

// Query selects rows from a table. Conditions are ANDed.
type Query struct {
	Where []Condition
	// OrderBy is a column name sorted ascending. Empty means the primary key.
	OrderBy string
	// Limit caps the number of rows. Zero means unlimited.
	Limit int
}

// RecordStore is the external relational data store.
// Tables are named per organization; rows are column maps.
type RecordStore interface {
	// Filter returns the rows of table matching q.
	Filter(ctx context.Context, table string, q Query) ([]domain.Row, error)

	// Insert adds a row and returns it with its assigned primary key.
	Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error)

	// UpdateByID applies patch to the row with the given primary key.
	// Returns domain.ErrNotFound if no such row exists.
	UpdateByID(ctx context.Context, table string, id int64, patch domain.Row) error
}

// ProcedureCaller invokes named remote procedures on the data store.
type ProcedureCaller interface {
	// Call runs the procedure with named arguments.
	Call(ctx context.Context, name string, args map[string]any) error
}

// ProcedureProvisionOrgTables creates the personnel and compensation tables
// of one organization. Argument: "org_id".
const ProcedureProvisionOrgTables = "provision_org_tables"
