package domain

import (
	"fmt"
	"strings"
	"time"
)

// PayDayOfMonth is the fixed day salaries are paid.
const PayDayOfMonth = 25

// SettlementCurrency is the only currency bank files are issued in.
const SettlementCurrency = "SEK"

// DebtorInfo describes the paying organization's account.
type DebtorInfo struct {
	Name         string `toml:"name" json:"name"`
	Account      string `toml:"account" json:"account"`
	ClearingCode string `toml:"clearing" json:"clearing"`
	// BIC is optional; without it no debtor agent is emitted.
	BIC string `toml:"bic" json:"bic,omitempty"`
	// Bank is a short bank label used in the file name.
	Bank string `toml:"bank" json:"bank"`
}

// Validate checks the fields every payment file needs.
func (d DebtorInfo) Validate() error {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "org.name")
	}
	if d.Account == "" {
		missing = append(missing, "org.account")
	}
	if len(missing) > 0 {
		return &MissingSettingsError{Keys: missing}
	}
	return nil
}

// NextPayDate returns the next salary execution date relative to today:
// this month's 25th while today is before it, otherwise next month's.
func NextPayDate(today time.Time) time.Time {
	y, m, d := today.Date()
	if d < PayDayOfMonth {
		return time.Date(y, m, PayDayOfMonth, 0, 0, 0, 0, today.Location())
	}
	return time.Date(y, m+1, PayDayOfMonth, 0, 0, 0, 0, today.Location())
}

// PaymentFile is an encoded interbank payment document.
type PaymentFile struct {
	Filename      string    `json:"filename"`
	Content       []byte    `json:"-"`
	MessageID     string    `json:"messageId"`
	ExecutionDate time.Time `json:"executionDate"`
	Included      int       `json:"included"`
	Excluded      int       `json:"excluded"`
	// ControlSumCents is the exact sum of included amounts in minor units.
	ControlSumCents int64 `json:"controlSumCents"`
}

// PaymentFileName returns "<bank>_salary_payment_<YYYYMMDD>.xml".
func PaymentFileName(bank string, executionDate time.Time) string {
	bank = strings.ToLower(strings.Join(strings.Fields(bank), "_"))
	if bank == "" {
		bank = "bank"
	}
	return fmt.Sprintf("%s_salary_payment_%s.xml", bank, executionDate.Format("20060102"))
}
