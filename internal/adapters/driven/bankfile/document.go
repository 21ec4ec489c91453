package bankfile

import "encoding/xml"

// Namespace is the pain.001.001.03 schema namespace.
const Namespace = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"

// Field length limits of the scheme.
const (
	maxIDLen         = 35
	maxNameLen       = 70
	maxRemittanceLen = 140
)

type document struct {
	XMLName  xml.Name         `xml:"Document"`
	Xmlns    string           `xml:"xmlns,attr"`
	Initiate customerTransfer `xml:"CstmrCdtTrfInitn"`
}

type customerTransfer struct {
	GroupHeader groupHeader `xml:"GrpHdr"`
	Payment     paymentInfo `xml:"PmtInf"`
}

type groupHeader struct {
	MessageID    string    `xml:"MsgId"`
	CreatedAt    string    `xml:"CreDtTm"`
	Transactions int       `xml:"NbOfTxs"`
	ControlSum   string    `xml:"CtrlSum"`
	Initiator    partyName `xml:"InitgPty"`
}

type paymentInfo struct {
	PaymentInfoID  string           `xml:"PmtInfId"`
	Method         string           `xml:"PmtMtd"`
	Transactions   int              `xml:"NbOfTxs"`
	ControlSum     string           `xml:"CtrlSum"`
	TypeInfo       paymentTypeInfo  `xml:"PmtTpInf"`
	ExecutionDate  string           `xml:"ReqdExctnDt"`
	Debtor         partyName        `xml:"Dbtr"`
	DebtorAccount  account          `xml:"DbtrAcct"`
	DebtorAgent    *agent           `xml:"DbtrAgt,omitempty"`
	ChargeBearer   string           `xml:"ChrgBr"`
	CreditTransfer []creditTransfer `xml:"CdtTrfTxInf"`
}

type paymentTypeInfo struct {
	CategoryPurpose code `xml:"CtgyPurp"`
}

type code struct {
	Code string `xml:"Cd"`
}

type partyName struct {
	Name string `xml:"Nm"`
}

type account struct {
	ID accountID `xml:"Id"`
}

type accountID struct {
	IBAN  string        `xml:"IBAN,omitempty"`
	Other *otherAccount `xml:"Othr,omitempty"`
}

type otherAccount struct {
	ID     string     `xml:"Id"`
	Scheme schemeName `xml:"SchmeNm"`
}

type schemeName struct {
	Proprietary string `xml:"Prtry"`
}

type agent struct {
	Institution institution `xml:"FinInstnId"`
}

type institution struct {
	BIC string `xml:"BIC"`
}

type creditTransfer struct {
	PaymentID  paymentID   `xml:"PmtId"`
	Amount     amount      `xml:"Amt"`
	Creditor   partyName   `xml:"Cdtr"`
	Account    account     `xml:"CdtrAcct"`
	Remittance *remittance `xml:"RmtInf,omitempty"`
}

type paymentID struct {
	EndToEndID string `xml:"EndToEndId"`
}

type amount struct {
	Instructed instructedAmount `xml:"InstdAmt"`
}

type instructedAmount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

type remittance struct {
	Unstructured string `xml:"Ustrd"`
}
