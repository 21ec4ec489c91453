package domain

// EmployeePayload is the ERP employee resource.
// Absent optionals are omitted from the request body.
type EmployeePayload struct {
	EmployeeID             Optional[string] `json:"EmployeeId,omitzero"`
	FirstName              Optional[string] `json:"FirstName,omitzero"`
	LastName               Optional[string] `json:"LastName,omitzero"`
	PersonalIdentityNumber Optional[string] `json:"PersonalIdentityNumber,omitzero"`
	Email                  Optional[string] `json:"Email,omitzero"`
	ClearingNo             Optional[string] `json:"ClearingNo,omitzero"`
	BankAccountNo          Optional[string] `json:"BankAccountNo,omitzero"`
	CostCenter             Optional[string] `json:"CostCenter,omitzero"`
	EmploymentForm         Optional[string] `json:"EmploymentForm,omitzero"`
	SalaryForm             Optional[string] `json:"SalaryForm,omitzero"`
	PersonelType           Optional[string] `json:"PersonelType,omitzero"`
	ScheduleID             Optional[string] `json:"ScheduleId,omitzero"`
	JobTitle               Optional[string] `json:"JobTitle,omitzero"`
	TaxTable               Optional[string] `json:"TaxTable,omitzero"`
}

// SalaryTransactionPayload is the ERP salary transaction resource.
type SalaryTransactionPayload struct {
	EmployeeID Optional[string]  `json:"EmployeeId,omitzero"`
	SalaryCode Optional[string]  `json:"SalaryCode,omitzero"`
	Date       Optional[string]  `json:"Date,omitzero"`
	Number     Optional[float64] `json:"Number,omitzero"`
	Amount     Optional[float64] `json:"Amount,omitzero"`
	CostCenter Optional[string]  `json:"CostCenter,omitzero"`
	TextRow    Optional[string]  `json:"TextRow,omitzero"`
}

// ContractDefaults are static employment contract values applied when a
// personnel row does not provide its own.
type ContractDefaults struct {
	EmploymentForm string `toml:"employment_form" json:"employment_form"`
	SalaryForm     string `toml:"salary_form" json:"salary_form"`
	PersonelType   string `toml:"personel_type" json:"personel_type"`
	ScheduleID     string `toml:"schedule_id" json:"schedule_id"`
	JobTitle       string `toml:"job_title" json:"job_title"`
	TaxTable       string `toml:"tax_table" json:"tax_table"`
}

// ERPResponse is the raw outcome of an ERP call that reached the server.
type ERPResponse struct {
	StatusCode int
	Body       []byte
	// ExternalID is the identifier the ERP assigned, when the body carried one.
	ExternalID string
}

// IsSuccess returns true for 2xx responses.
func (r *ERPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
