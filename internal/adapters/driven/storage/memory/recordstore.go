package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// Ensure RecordStore implements the interfaces.
var (
	_ driven.RecordStore     = (*RecordStore)(nil)
	_ driven.ProcedureCaller = (*RecordStore)(nil)
)

type table struct {
	schema *domain.RecordSchema
	rows   map[int64]domain.Row
	nextID int64
}

// RecordStore is an in-memory implementation of driven.RecordStore.
// Tables exist only after provisioning.
type RecordStore struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		tables: make(map[string]*table),
	}
}

// Call runs a named procedure. Only provisioning is supported.
func (s *RecordStore) Call(_ context.Context, name string, args map[string]any) error {
	if name != driven.ProcedureProvisionOrgTables {
		return fmt.Errorf("%w: unknown procedure %q", domain.ErrInvalidInput, name)
	}
	orgID, _ := args["org_id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, schema := range []*domain.RecordSchema{domain.PersonnelSchema, domain.CompensationSchema} {
		name, err := schema.TableFor(orgID)
		if err != nil {
			return err
		}
		if _, ok := s.tables[name]; !ok {
			s.tables[name] = &table{schema: schema, rows: make(map[int64]domain.Row)}
		}
	}
	return nil
}

// Filter returns copies of the rows matching q.
func (s *RecordStore) Filter(_ context.Context, name string, q driven.Query) ([]domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}

	var out []domain.Row
	for _, row := range t.rows {
		if matches(row, q.Where) {
			out = append(out, maps.Clone(row))
		}
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = domain.ColID
	}
	slices.SortStableFunc(out, func(a, b domain.Row) int {
		if c := compareValues(a[orderBy], b[orderBy]); c != 0 {
			return c
		}
		return cmp.Compare(domain.RowID(a), domain.RowID(b))
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Insert adds a row and returns it with its assigned id.
func (s *RecordStore) Insert(_ context.Context, name string, row domain.Row) (domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	clean := t.schema.WithDefaults(row)
	delete(clean, domain.ColID)
	if err := t.schema.CheckRequired(clean); err != nil {
		return nil, err
	}
	if err := t.checkUnique(clean, 0); err != nil {
		return nil, err
	}

	t.nextID++
	clean[domain.ColID] = t.nextID
	t.rows[t.nextID] = clean
	return maps.Clone(clean), nil
}

// UpdateByID applies patch to the row with the given id.
func (s *RecordStore) UpdateByID(_ context.Context, name string, id int64, patch domain.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return err
	}
	row, ok := t.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	clean := t.schema.Allow(patch)
	delete(clean, domain.ColID)
	if err := t.checkUnique(clean, id); err != nil {
		return err
	}
	maps.Copy(row, clean)
	return nil
}

func (s *RecordStore) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", name, domain.ErrNotFound)
	}
	return t, nil
}

// checkUnique enforces case-insensitive uniqueness of unique text fields.
func (t *table) checkUnique(row domain.Row, selfID int64) error {
	for _, f := range t.schema.Fields {
		if !f.Unique {
			continue
		}
		v, _ := row[f.Name].(string)
		if strings.TrimSpace(v) == "" {
			continue
		}
		for id, existing := range t.rows {
			other, _ := existing[f.Name].(string)
			if id != selfID && strings.EqualFold(strings.TrimSpace(other), strings.TrimSpace(v)) {
				return fmt.Errorf("%w: duplicate %s %q", domain.ErrInvalidInput, f.Name, v)
			}
		}
	}
	return nil
}

func matches(row domain.Row, where []driven.Condition) bool {
	for _, c := range where {
		switch c.Op {
		case driven.OpEq:
			if compareValues(row[c.Column], c.Value) != 0 || row[c.Column] == nil {
				return false
			}
		case driven.OpNotTrue:
			if domain.FlagFromValue(row[c.Column]).IsPushed() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders numbers numerically, everything else by its text form. nil sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum && bNum {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
