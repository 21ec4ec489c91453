package domain

// Fixed payroll rates. Not yet sourced from the organization rate table.
const (
	// HolidayPayRate is applied to the gross base.
	HolidayPayRate = 0.12
	// EmployerSocialFeeRate is applied to gross base plus holiday pay for eligible employees.
	EmployerSocialFeeRate = 0.3142
	// DefaultTaxRate is the income tax percentage used when personnel data has none.
	DefaultTaxRate = 30.0
)

// BankDetails identifies the account a salary is paid to.
type BankDetails struct {
	ClearingCode string `json:"clearingCode,omitempty"`
	Account      string `json:"account,omitempty"`
}

// IsEmpty returns true if no account is known.
func (b BankDetails) IsEmpty() bool {
	return b.ClearingCode == "" && b.Account == ""
}

// SalaryPerson is the computed salary of one employee.
// Derived from compensation records on every run; never stored.
type SalaryPerson struct {
	EmployeeID        string               `json:"employeeId"`
	Name              string               `json:"name"`
	Email             string               `json:"email,omitempty"`
	CostCenter        string               `json:"costCenter,omitempty"`
	HasPersonnel      bool                 `json:"hasPersonnel"`
	SocialFeeEligible bool                 `json:"socialFeeEligible"`
	TaxRate           float64              `json:"taxRate"`
	GrossBase         float64              `json:"grossBase"`
	HolidayPay        float64              `json:"holidayPay"`
	EmployerSocialFee float64              `json:"employerSocialFee"`
	IncomeTax         float64              `json:"incomeTax"`
	NetPay            float64              `json:"netPay"`
	Periods           []string             `json:"periods,omitempty"`
	Breakdown         []CompensationRecord `json:"breakdown"`
	Bank              BankDetails          `json:"bank"`
}

// GrossWithHoliday returns gross base plus holiday pay, the base for tax and fees.
func (s *SalaryPerson) GrossWithHoliday() float64 {
	return s.GrossBase + s.HolidayPay
}
