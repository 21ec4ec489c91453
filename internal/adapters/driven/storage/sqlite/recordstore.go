package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// tablePattern matches the per-organization table names produced by RecordSchema.TableFor.
var tablePattern = regexp.MustCompile(`^org_[a-z0-9_]{1,48}_(personnel|compensation)$`)

// recordStore implements driven.RecordStore and driven.ProcedureCaller.
type recordStore struct {
	store *Store
}

var (
	_ driven.RecordStore     = (*recordStore)(nil)
	_ driven.ProcedureCaller = (*recordStore)(nil)
)

// Call runs a named procedure. Only provisioning is supported.
func (s *recordStore) Call(ctx context.Context, name string, args map[string]any) error {
	if name != driven.ProcedureProvisionOrgTables {
		return fmt.Errorf("%w: unknown procedure %q", domain.ErrInvalidInput, name)
	}
	orgID, _ := args["org_id"].(string)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, schema := range []*domain.RecordSchema{domain.PersonnelSchema, domain.CompensationSchema} {
		table, err := schema.TableFor(orgID)
		if err != nil {
			return err
		}
		for _, stmt := range createTableSQL(table, schema) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating %s: %w", table, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing provisioning: %w", err)
	}
	return nil
}

// Filter returns the rows of table matching q.
func (s *recordStore) Filter(ctx context.Context, table string, q driven.Query) ([]domain.Row, error) {
	schema, err := schemaForTable(table)
	if err != nil {
		return nil, err
	}

	columns := columnNames(schema)
	var (
		where []string
		args  []any
	)
	for _, c := range q.Where {
		if _, ok := schema.Field(c.Column); !ok {
			return nil, fmt.Errorf("%w: unknown column %q", domain.ErrInvalidInput, c.Column)
		}
		switch c.Op {
		case driven.OpEq:
			where = append(where, quote(c.Column)+" = ?")
			args = append(args, bindValue(c.Value))
		case driven.OpNotTrue:
			where = append(where, fmt.Sprintf("(%s IS NULL OR %s = 0)", quote(c.Column), quote(c.Column)))
		default:
			return nil, fmt.Errorf("%w: unsupported filter %q", domain.ErrInvalidInput, c.Op)
		}
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = domain.ColID
	}
	if _, ok := schema.Field(orderBy); !ok {
		return nil, fmt.Errorf("%w: unknown column %q", domain.ErrInvalidInput, orderBy)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoteAll(columns), ", "), quote(table))
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s ASC, %s ASC", quote(orderBy), quote(domain.ColID))
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, wrapTableErr(table, err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		row, err := scanRecord(rows, schema, columns)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

// Insert adds a row and returns it with its assigned id.
func (s *recordStore) Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error) {
	schema, err := schemaForTable(table)
	if err != nil {
		return nil, err
	}
	clean := schema.WithDefaults(row)
	delete(clean, domain.ColID)
	if err := schema.CheckRequired(clean); err != nil {
		return nil, err
	}

	columns := sortedKeys(clean)
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		args = append(args, bindValue(clean[col]))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(quoteAll(columns), ", "), placeholders)
	res, err := s.store.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrapTableErr(table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}
	clean[domain.ColID] = id
	return clean, nil
}

// UpdateByID applies patch to the row with the given id.
func (s *recordStore) UpdateByID(ctx context.Context, table string, id int64, patch domain.Row) error {
	schema, err := schemaForTable(table)
	if err != nil {
		return err
	}
	clean := schema.Allow(patch)
	delete(clean, domain.ColID)

	columns := sortedKeys(clean)
	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, col := range columns {
		sets = append(sets, quote(col)+" = ?")
		args = append(args, bindValue(clean[col]))
	}
	args = append(args, id)

	var stmt string
	if len(sets) == 0 {
		stmt = fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = ?",
			quote(table), quote(domain.ColID), quote(domain.ColID), quote(domain.ColID))
	} else {
		stmt = fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", quote(table), strings.Join(sets, ", "), quote(domain.ColID))
	}

	res, err := s.store.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return wrapTableErr(table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Helper Functions ====================

func schemaForTable(table string) (*domain.RecordSchema, error) {
	m := tablePattern.FindStringSubmatch(table)
	if m == nil {
		return nil, fmt.Errorf("%w: table name %q", domain.ErrInvalidInput, table)
	}
	return domain.SchemaFor(domain.RecordKind(m[1]))
}

// createTableSQL renders the DDL of one organization table.
func createTableSQL(table string, schema *domain.RecordSchema) []string {
	defs := make([]string, 0, len(schema.Fields))
	var stmts []string
	for _, f := range schema.Fields {
		if f.Name == domain.ColID {
			defs = append(defs, quote(f.Name)+" INTEGER PRIMARY KEY AUTOINCREMENT")
			continue
		}
		def := quote(f.Name) + " " + sqlType(f.Type)
		if f.Unique {
			def += " COLLATE NOCASE"
		}
		defs = append(defs, def)
		if f.Unique {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s(%s) WHERE %s IS NOT NULL AND %s <> ''",
				quote("idx_"+table+"_"+f.Name), quote(table), quote(f.Name), quote(f.Name), quote(f.Name)))
		}
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", "))
	return append([]string{create}, stmts...)
}

func sqlType(t domain.FieldType) string {
	switch t {
	case domain.FieldInt, domain.FieldBool, domain.FieldFlag:
		return "INTEGER"
	case domain.FieldFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func columnNames(schema *domain.RecordSchema) []string {
	cols := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// scanRecord reads one row and converts SQLite storage classes back to schema types.
func scanRecord(rows *sql.Rows, schema *domain.RecordSchema, columns []string) (domain.Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	row := make(domain.Row, len(columns))
	for i, col := range columns {
		f, _ := schema.Field(col)
		v := values[i]
		if v == nil {
			if f.Type == domain.FieldFlag {
				row[col] = nil
			}
			continue
		}
		switch f.Type {
		case domain.FieldBool, domain.FieldFlag:
			n, _ := v.(int64)
			row[col] = n != 0
		case domain.FieldFloat:
			switch n := v.(type) {
			case int64:
				row[col] = float64(n)
			default:
				row[col] = n
			}
		case domain.FieldText:
			if b, ok := v.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = v
			}
		default:
			row[col] = v
		}
	}
	return row, nil
}

// bindValue converts booleans to integers; everything else binds as is.
func bindValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

func wrapTableErr(table string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("table %s: %w", table, domain.ErrNotFound)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	default:
		return fmt.Errorf("querying %s: %w", table, err)
	}
}

func sortedKeys(row domain.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, id := range idents {
		out[i] = quote(id)
	}
	return out
}
