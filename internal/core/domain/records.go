package domain

import "strings"

// PushedFlag marks the ERP sync status of a record.
// It moves false/unset -> true exactly once and is never reset.
type PushedFlag int8

// Pushed flag states.
const (
	FlagUnset PushedFlag = iota
	FlagFalse
	FlagTrue
)

// IsPushed returns true once the record was accepted by the ERP.
func (f PushedFlag) IsPushed() bool {
	return f == FlagTrue
}

// Value returns the store representation: nil, false or true.
func (f PushedFlag) Value() any {
	switch f {
	case FlagTrue:
		return true
	case FlagFalse:
		return false
	default:
		return nil
	}
}

// FlagFromValue reads a pushed flag from a store value.
func FlagFromValue(v any) PushedFlag {
	switch b := v.(type) {
	case nil:
		return FlagUnset
	case bool:
		if b {
			return FlagTrue
		}
		return FlagFalse
	case int64:
		if b != 0 {
			return FlagTrue
		}
		return FlagFalse
	case int:
		if b != 0 {
			return FlagTrue
		}
		return FlagFalse
	default:
		return FlagUnset
	}
}

// CompensationRecord is one unit of pay for one employee in one period.
type CompensationRecord struct {
	ID           int64
	EmployeeID   string
	EmployeeName string
	Amount       float64
	Quantity     float64
	CostCenter   string
	ActivityCode string
	Comment      string
	Period       string
	ExternalID   string
	Pushed       PushedFlag
}

// Total returns amount x quantity.
func (c *CompensationRecord) Total() float64 {
	return c.Amount * c.Quantity
}

// CompensationFromRow converts an allow-listed store row.
func CompensationFromRow(row Row) CompensationRecord {
	r := CompensationSchema.Allow(row)
	rec := CompensationRecord{
		ID:           rowInt(r, ColID),
		EmployeeID:   strings.TrimSpace(rowString(r, "employee_id")),
		EmployeeName: strings.TrimSpace(rowString(r, "employee_name")),
		Amount:       rowFloat(r, "amount"),
		Quantity:     1,
		CostCenter:   strings.TrimSpace(rowString(r, "cost_center")),
		ActivityCode: strings.TrimSpace(rowString(r, "activity_code")),
		Comment:      rowString(r, "comment"),
		Period:       strings.TrimSpace(rowString(r, "period")),
		ExternalID:   rowString(r, "external_id"),
		Pushed:       FlagFromValue(r[ColPushed]),
	}
	if _, ok := r["quantity"]; ok && r["quantity"] != nil {
		rec.Quantity = rowFloat(r, "quantity")
	}
	return rec
}

// Row converts the record back into store columns. The id is omitted when zero.
func (c *CompensationRecord) Row() Row {
	row := Row{
		"employee_id":   c.EmployeeID,
		"employee_name": c.EmployeeName,
		"amount":        c.Amount,
		"quantity":      c.Quantity,
		"cost_center":   c.CostCenter,
		"activity_code": c.ActivityCode,
		"comment":       c.Comment,
		"period":        c.Period,
		"external_id":   c.ExternalID,
		ColPushed:       c.Pushed.Value(),
	}
	if c.ID != 0 {
		row[ColID] = c.ID
	}
	return row
}

// PersonnelRecord is employee master data.
type PersonnelRecord struct {
	ID                 int64
	Name               string
	TaxID              string
	BankClearingCode   string
	BankAccount        string
	Email              string
	CostCenter         string
	SocialFeeEligible  bool
	TaxRate            float64
	ExternalEmployeeID string
	// Contract fields override the configured defaults when set.
	EmploymentForm string
	SalaryForm     string
	JobTitle       string
	TaxTable       string
	Pushed         PushedFlag
}

// PersonnelFromRow converts an allow-listed store row.
func PersonnelFromRow(row Row) PersonnelRecord {
	r := PersonnelSchema.WithDefaults(row)
	return PersonnelRecord{
		ID:                 rowInt(r, ColID),
		Name:               strings.TrimSpace(rowString(r, "name")),
		TaxID:              strings.TrimSpace(rowString(r, "tax_id")),
		BankClearingCode:   strings.TrimSpace(rowString(r, "bank_clearing")),
		BankAccount:        strings.TrimSpace(rowString(r, "bank_account")),
		Email:              strings.TrimSpace(rowString(r, "email")),
		CostCenter:         strings.TrimSpace(rowString(r, "cost_center")),
		SocialFeeEligible:  rowBool(r, "social_fee_eligible", true),
		TaxRate:            rowFloat(r, "tax_rate"),
		ExternalEmployeeID: strings.TrimSpace(rowString(r, "external_employee_id")),
		EmploymentForm:     strings.TrimSpace(rowString(r, "employment_form")),
		SalaryForm:         strings.TrimSpace(rowString(r, "salary_form")),
		JobTitle:           strings.TrimSpace(rowString(r, "job_title")),
		TaxTable:           strings.TrimSpace(rowString(r, "tax_table")),
		Pushed:             FlagFromValue(r[ColPushed]),
	}
}

// Row converts the record back into store columns. The id is omitted when zero.
func (p *PersonnelRecord) Row() Row {
	row := Row{
		"name":                 p.Name,
		"tax_id":               p.TaxID,
		"bank_clearing":        p.BankClearingCode,
		"bank_account":         p.BankAccount,
		"email":                p.Email,
		"cost_center":          p.CostCenter,
		"social_fee_eligible":  p.SocialFeeEligible,
		"tax_rate":             p.TaxRate,
		"external_employee_id": p.ExternalEmployeeID,
		"employment_form":      p.EmploymentForm,
		"salary_form":          p.SalaryForm,
		"job_title":            p.JobTitle,
		"tax_table":            p.TaxTable,
		ColPushed:              p.Pushed.Value(),
	}
	if p.ID != 0 {
		row[ColID] = p.ID
	}
	return row
}

// NormalizedEmail returns the email in its case-insensitive uniqueness form.
func (p *PersonnelRecord) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(p.Email))
}

// SplitName splits a full name into first and last name on the last space.
func (p *PersonnelRecord) SplitName() (first, last string) {
	name := strings.Join(strings.Fields(p.Name), " ")
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// EmployeeKey returns the id compensation rows use to reference this person.
func (p *PersonnelRecord) EmployeeKey() string {
	if p.ExternalEmployeeID != "" {
		return p.ExternalEmployeeID
	}
	return rowString(Row{ColID: p.ID}, ColID)
}
