package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Row is a record store row keyed by column name.
type Row map[string]any

// FieldType is the storage type of a schema field.
type FieldType string

// Supported field types.
const (
	FieldInt   FieldType = "int"
	FieldFloat FieldType = "float"
	FieldText  FieldType = "text"
	FieldBool  FieldType = "bool"
	// FieldFlag is a nullable boolean (false/true/unset).
	FieldFlag FieldType = "flag"
)

// FieldSpec describes one column of a record kind.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	// Default is applied on insert when the field is absent. Nil means no default.
	Default any
	// Unique marks a case-insensitive unique column.
	Unique bool
}

// RecordKind names a record family stored per organization.
type RecordKind string

// Record kinds.
const (
	KindPersonnel    RecordKind = "personnel"
	KindCompensation RecordKind = "compensation"
)

// Column names shared by both kinds.
const (
	ColID     = "id"
	ColPushed = "pushed"
)

// RecordSchema is the allow-list of fields for a record kind.
type RecordSchema struct {
	Kind   RecordKind
	Fields []FieldSpec

	index map[string]int
}

var orgIDPattern = regexp.MustCompile(`^[a-z0-9_]{1,48}$`)

// ValidateOrgID checks that an organization id is safe to embed in a table name.
func ValidateOrgID(orgID string) error {
	if !orgIDPattern.MatchString(orgID) {
		return fmt.Errorf("%w: organization id %q", ErrInvalidInput, orgID)
	}
	return nil
}

// NewRecordSchema builds a schema and its field index.
func NewRecordSchema(kind RecordKind, fields ...FieldSpec) *RecordSchema {
	s := &RecordSchema{Kind: kind, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// TableFor returns the per-organization table holding this kind.
func (s *RecordSchema) TableFor(orgID string) (string, error) {
	if err := ValidateOrgID(orgID); err != nil {
		return "", err
	}
	return fmt.Sprintf("org_%s_%s", orgID, s.Kind), nil
}

// Field returns the definition of a column.
func (s *RecordSchema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.Fields[i], true
}

// Allow returns a copy of row holding only allow-listed columns.
func (s *RecordSchema) Allow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		if _, ok := s.index[k]; ok {
			out[k] = v
		}
	}
	return out
}

// WithDefaults returns a copy of row with defaults filled in for absent fields.
func (s *RecordSchema) WithDefaults(row Row) Row {
	out := s.Allow(row)
	for _, f := range s.Fields {
		if _, ok := out[f.Name]; !ok && f.Default != nil {
			out[f.Name] = f.Default
		}
	}
	return out
}

// CheckRequired returns a ValidationError listing required fields absent from row.
func (s *RecordSchema) CheckRequired(row Row) error {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		v, ok := row[f.Name]
		if !ok || v == nil || v == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// PersonnelSchema is the column allow-list for personnel tables.
var PersonnelSchema = NewRecordSchema(KindPersonnel,
	FieldSpec{Name: ColID, Type: FieldInt},
	FieldSpec{Name: "name", Type: FieldText, Required: true},
	FieldSpec{Name: "tax_id", Type: FieldText},
	FieldSpec{Name: "bank_clearing", Type: FieldText},
	FieldSpec{Name: "bank_account", Type: FieldText},
	FieldSpec{Name: "email", Type: FieldText, Unique: true},
	FieldSpec{Name: "cost_center", Type: FieldText},
	FieldSpec{Name: "social_fee_eligible", Type: FieldBool, Default: true},
	FieldSpec{Name: "tax_rate", Type: FieldFloat, Default: DefaultTaxRate},
	FieldSpec{Name: "external_employee_id", Type: FieldText},
	FieldSpec{Name: "employment_form", Type: FieldText},
	FieldSpec{Name: "salary_form", Type: FieldText},
	FieldSpec{Name: "job_title", Type: FieldText},
	FieldSpec{Name: "tax_table", Type: FieldText},
	FieldSpec{Name: ColPushed, Type: FieldFlag},
)

// CompensationSchema is the column allow-list for compensation tables.
var CompensationSchema = NewRecordSchema(KindCompensation,
	FieldSpec{Name: ColID, Type: FieldInt},
	FieldSpec{Name: "employee_id", Type: FieldText, Required: true},
	FieldSpec{Name: "employee_name", Type: FieldText},
	FieldSpec{Name: "amount", Type: FieldFloat, Required: true},
	FieldSpec{Name: "quantity", Type: FieldFloat, Default: 1.0},
	FieldSpec{Name: "cost_center", Type: FieldText},
	FieldSpec{Name: "activity_code", Type: FieldText},
	FieldSpec{Name: "comment", Type: FieldText},
	FieldSpec{Name: "period", Type: FieldText},
	FieldSpec{Name: "external_id", Type: FieldText},
	FieldSpec{Name: ColPushed, Type: FieldFlag},
)

// SchemaFor returns the schema of a record kind.
func SchemaFor(kind RecordKind) (*RecordSchema, error) {
	switch kind {
	case KindPersonnel:
		return PersonnelSchema, nil
	case KindCompensation:
		return CompensationSchema, nil
	default:
		return nil, fmt.Errorf("%w: record kind %q", ErrInvalidInput, kind)
	}
}

// RowID returns the primary key of a row, or 0 if it has none.
func RowID(row Row) int64 {
	return rowInt(row, ColID)
}

func rowString(row Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func rowFloat(row Row, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func rowInt(row Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func rowBool(row Row, key string, def bool) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}
