package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// MapPersonnel converts a personnel record into an ERP employee payload.
// Non-blank record fields win over contract defaults; blank fields are omitted.
func MapPersonnel(rec domain.PersonnelRecord, defaults domain.ContractDefaults) (domain.EmployeePayload, error) {
	first, last := rec.SplitName()

	payload := domain.EmployeePayload{
		FirstName:              domain.OptionalString(first),
		LastName:               domain.OptionalString(last),
		PersonalIdentityNumber: domain.OptionalString(rec.TaxID),
		Email:                  domain.OptionalString(rec.Email),
		ClearingNo:             domain.OptionalString(rec.BankClearingCode),
		BankAccountNo:          domain.OptionalString(rec.BankAccount),
		CostCenter:             domain.OptionalString(rec.CostCenter),
		EmploymentForm:         domain.OptionalString(rec.EmploymentForm).Or(domain.OptionalString(defaults.EmploymentForm)),
		SalaryForm:             domain.OptionalString(rec.SalaryForm).Or(domain.OptionalString(defaults.SalaryForm)),
		PersonelType:           domain.OptionalString(defaults.PersonelType),
		ScheduleID:             domain.OptionalString(defaults.ScheduleID),
		JobTitle:               domain.OptionalString(rec.JobTitle).Or(domain.OptionalString(defaults.JobTitle)),
		TaxTable:               domain.OptionalString(rec.TaxTable).Or(domain.OptionalString(defaults.TaxTable)),
	}
	if rec.ExternalEmployeeID != "" || rec.ID != 0 {
		payload.EmployeeID = domain.OptionalString(rec.EmployeeKey())
	}

	var missing []string
	if !payload.Email.IsPresent() {
		missing = append(missing, "Email")
	}
	if !payload.FirstName.IsPresent() {
		missing = append(missing, "FirstName")
	}
	if !payload.LastName.IsPresent() {
		missing = append(missing, "LastName")
	}
	if len(missing) > 0 {
		return payload, &domain.ValidationError{Missing: missing}
	}
	return payload, nil
}

// MapCompensation converts a compensation record into an ERP salary transaction payload.
func MapCompensation(rec domain.CompensationRecord) (domain.SalaryTransactionPayload, error) {
	payload := domain.SalaryTransactionPayload{
		EmployeeID: domain.OptionalString(rec.EmployeeID),
		SalaryCode: domain.OptionalString(rec.ActivityCode),
		Number:     domain.Some(rec.Quantity),
		Amount:     domain.Some(rec.Amount),
		CostCenter: domain.OptionalString(rec.CostCenter),
		TextRow:    domain.OptionalString(rec.Comment),
	}

	date, err := transactionDate(rec.Period)
	if err != nil {
		return payload, err
	}
	payload.Date = domain.OptionalString(date)

	var missing []string
	if !payload.EmployeeID.IsPresent() {
		missing = append(missing, "EmployeeId")
	}
	if !payload.Date.IsPresent() {
		missing = append(missing, "Date")
	}
	if !payload.SalaryCode.IsPresent() {
		missing = append(missing, "SalaryCode")
	}
	if len(missing) > 0 {
		return payload, &domain.ValidationError{Missing: missing}
	}
	return payload, nil
}

// transactionDate normalises a period to YYYY-MM-DD.
// A month period maps to its first day. Blank stays blank.
func transactionDate(period string) (string, error) {
	if period == "" {
		return "", nil
	}
	if t, err := time.Parse(time.DateOnly, period); err == nil {
		return t.Format(time.DateOnly), nil
	}
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.Format(time.DateOnly), nil
	}
	return "", fmt.Errorf("%w: period %q is not YYYY-MM or YYYY-MM-DD", domain.ErrValidationFailed, period)
}
