package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// Ensure SalaryService implements the interface.
var _ driving.SalaryService = (*SalaryService)(nil)

// SalaryService computes salaries from the record store.
type SalaryService struct {
	records driven.RecordStore
}

// NewSalaryService creates a salary service.
func NewSalaryService(records driven.RecordStore) *SalaryService {
	return &SalaryService{records: records}
}

// ComputeUnpaidSalaries aggregates unflagged compensation per employee.
func (s *SalaryService) ComputeUnpaidSalaries(ctx context.Context, orgID string) ([]domain.SalaryPerson, error) {
	compTable, err := domain.CompensationSchema.TableFor(orgID)
	if err != nil {
		return nil, err
	}
	personnelTable, err := domain.PersonnelSchema.TableFor(orgID)
	if err != nil {
		return nil, err
	}

	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	compRows, err := s.records.Filter(sctx, compTable, driven.Query{
		Where:   []driven.Condition{{Column: domain.ColPushed, Op: driven.OpNotTrue}},
		OrderBy: domain.ColID,
	})
	if err != nil {
		return nil, fmt.Errorf("list compensation: %w", err)
	}
	personnelRows, err := s.records.Filter(sctx, personnelTable, driven.Query{OrderBy: domain.ColID})
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}

	comp := make([]domain.CompensationRecord, 0, len(compRows))
	for _, row := range compRows {
		comp = append(comp, domain.CompensationFromRow(row))
	}
	personnel := make([]domain.PersonnelRecord, 0, len(personnelRows))
	for _, row := range personnelRows {
		personnel = append(personnel, domain.PersonnelFromRow(row))
	}
	return ComputeSalaries(comp, personnel), nil
}

// ComputeSalaries groups compensation by employee and derives each salary.
// Groups keep first-appearance order and records keep input order. Groups
// without personnel data fall back to the name on the compensation rows.
func ComputeSalaries(comp []domain.CompensationRecord, personnel []domain.PersonnelRecord) []domain.SalaryPerson {
	byKey := personnelIndex(personnel)

	var order []string
	groups := make(map[string][]domain.CompensationRecord)
	for _, rec := range comp {
		key := groupKey(rec)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	out := make([]domain.SalaryPerson, 0, len(order))
	for _, key := range order {
		out = append(out, computePerson(groups[key], byKey[groups[key][0].EmployeeID]))
	}
	return out
}

// personnelIndex maps employee ids to personnel. External employee ids take
// precedence over record ids whatever the row order; among duplicates the
// first row wins.
func personnelIndex(personnel []domain.PersonnelRecord) map[string]*domain.PersonnelRecord {
	byKey := make(map[string]*domain.PersonnelRecord, len(personnel)*2)
	for i := range personnel {
		p := &personnel[i]
		if p.ExternalEmployeeID == "" {
			continue
		}
		if _, taken := byKey[p.ExternalEmployeeID]; !taken {
			byKey[p.ExternalEmployeeID] = p
		}
	}
	for i := range personnel {
		p := &personnel[i]
		if p.ID == 0 {
			continue
		}
		key := strconv.FormatInt(p.ID, 10)
		if _, taken := byKey[key]; !taken {
			byKey[key] = p
		}
	}
	return byKey
}

func groupKey(rec domain.CompensationRecord) string {
	if rec.EmployeeID != "" {
		return "id:" + rec.EmployeeID
	}
	return "name:" + rec.EmployeeName
}

func computePerson(records []domain.CompensationRecord, p *domain.PersonnelRecord) domain.SalaryPerson {
	first := records[0]
	person := domain.SalaryPerson{
		EmployeeID:        first.EmployeeID,
		CostCenter:        first.CostCenter,
		SocialFeeEligible: true,
		TaxRate:           domain.DefaultTaxRate,
		Breakdown:         records,
	}
	for _, rec := range records {
		if person.Name == "" {
			person.Name = rec.EmployeeName
		}
		person.GrossBase += rec.Total()
		if rec.Period != "" && !slices.Contains(person.Periods, rec.Period) {
			person.Periods = append(person.Periods, rec.Period)
		}
	}

	if p != nil {
		person.HasPersonnel = true
		if p.Name != "" {
			person.Name = p.Name
		}
		person.Email = p.Email
		if p.CostCenter != "" {
			person.CostCenter = p.CostCenter
		}
		person.SocialFeeEligible = p.SocialFeeEligible
		person.TaxRate = p.TaxRate
		person.Bank = domain.BankDetails{ClearingCode: p.BankClearingCode, Account: p.BankAccount}
	}
	if person.Name == "" {
		person.Name = person.EmployeeID
	}

	person.HolidayPay = person.GrossBase * domain.HolidayPayRate
	base := person.GrossWithHoliday()
	if person.SocialFeeEligible {
		person.EmployerSocialFee = base * domain.EmployerSocialFeeRate
	}
	person.IncomeTax = person.TaxRate / 100 * base
	person.NetPay = base - person.IncomeTax
	return person
}
