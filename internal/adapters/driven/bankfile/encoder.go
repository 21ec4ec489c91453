// Package bankfile encodes salary payments as ISO 20022 credit transfer
// initiation (pain.001.001.03) documents.
package bankfile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

const (
	paymentMethod    = "TRF"
	categorySalary   = "SALA"
	chargeBearer     = "SLEV"
	domesticScheme   = "BBAN"
	ibanLength       = 24
	remittancePrefix = "Lön "
	unknownEndToEnd  = "NOTPROVIDED"
)

// Ensure Encoder implements the interface.
var _ driven.PaymentFileEncoder = (*Encoder)(nil)

// Encoder builds payment documents.
type Encoder struct {
	now   func() time.Time
	newID func() string
}

// NewEncoder creates an encoder with uuid message ids.
func NewEncoder() *Encoder {
	return &Encoder{
		now:   time.Now,
		newID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// Encode emits one credit transfer per salary with positive net pay.
// Other salaries are excluded from the entries and the declared totals.
func (e *Encoder) Encode(
	salaries []domain.SalaryPerson, debtor domain.DebtorInfo, executionDate time.Time,
) (*domain.PaymentFile, error) {
	if err := debtor.Validate(); err != nil {
		return nil, err
	}
	if executionDate.IsZero() {
		executionDate = domain.NextPayDate(e.now())
	}

	var (
		transfers []creditTransfer
		sumCents  int64
		excluded  int
	)
	for i := range salaries {
		s := &salaries[i]
		// Amounts are compared after rounding to cents; a payment that would
		// be 0.00 is not a valid transfer.
		cents := toCents(s.NetPay)
		if cents <= 0 {
			excluded++
			continue
		}
		sumCents += cents
		transfers = append(transfers, creditTransfer{
			PaymentID: paymentID{EndToEndID: endToEndID(s.EmployeeID)},
			Amount: amount{Instructed: instructedAmount{
				Currency: domain.SettlementCurrency,
				Value:    formatCents(cents),
			}},
			Creditor:   partyName{Name: truncate(s.Name, maxNameLen)},
			Account:    accountFor(s.Bank.ClearingCode, s.Bank.Account),
			Remittance: remittanceFor(s.Periods),
		})
	}

	msgID := truncate(e.newID(), maxIDLen)
	controlSum := formatCents(sumCents)
	doc := document{
		Xmlns: Namespace,
		Initiate: customerTransfer{
			GroupHeader: groupHeader{
				MessageID:    msgID,
				CreatedAt:    e.now().Format("2006-01-02T15:04:05"),
				Transactions: len(transfers),
				ControlSum:   controlSum,
				Initiator:    partyName{Name: truncate(debtor.Name, maxNameLen)},
			},
			Payment: paymentInfo{
				PaymentInfoID:  truncate(msgID+"-1", maxIDLen),
				Method:         paymentMethod,
				Transactions:   len(transfers),
				ControlSum:     controlSum,
				TypeInfo:       paymentTypeInfo{CategoryPurpose: code{Code: categorySalary}},
				ExecutionDate:  executionDate.Format("2006-01-02"),
				Debtor:         partyName{Name: truncate(debtor.Name, maxNameLen)},
				DebtorAccount:  accountFor(debtor.ClearingCode, debtor.Account),
				ChargeBearer:   chargeBearer,
				CreditTransfer: transfers,
			},
		},
	}
	if bic := strings.TrimSpace(debtor.BIC); bic != "" {
		doc.Initiate.Payment.DebtorAgent = &agent{Institution: institution{BIC: bic}}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	buf.WriteByte('\n')

	return &domain.PaymentFile{
		Filename:        domain.PaymentFileName(debtor.Bank, executionDate),
		Content:         buf.Bytes(),
		MessageID:       msgID,
		ExecutionDate:   executionDate,
		Included:        len(transfers),
		Excluded:        excluded,
		ControlSumCents: sumCents,
	}, nil
}

// accountFor encodes a 24 character value with a country prefix as IBAN
// and anything else as clearing code plus account number.
func accountFor(clearing, number string) account {
	cleaned := cleanAccount(number)
	if isIBAN(cleaned) {
		return account{ID: accountID{IBAN: cleaned}}
	}
	return account{ID: accountID{Other: &otherAccount{
		ID:     cleanAccount(clearing) + cleaned,
		Scheme: schemeName{Proprietary: domesticScheme},
	}}}
}

func isIBAN(s string) bool {
	if len(s) != ibanLength {
		return false
	}
	return isUpperASCII(s[0]) && isUpperASCII(s[1])
}

func isUpperASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// cleanAccount strips separators and uppercases.
func cleanAccount(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			return -1
		}
		return r
	}, s))
}

func remittanceFor(periods []string) *remittance {
	if len(periods) == 0 {
		return nil
	}
	return &remittance{Unstructured: truncate(remittancePrefix+strings.Join(periods, ", "), maxRemittanceLen)}
}

func endToEndID(employeeID string) string {
	id := strings.TrimSpace(employeeID)
	if id == "" {
		return unknownEndToEnd
	}
	return truncate(id, maxIDLen)
}

// truncate caps s at limit runes.
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
