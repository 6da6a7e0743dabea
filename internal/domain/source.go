package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies the collection a ledger event was derived from.
type SourceType string

const (
	SourceTypeAdvance         SourceType = "employee_advance"
	SourceTypeAdjustment      SourceType = "employee_adjustment"
	SourceTypePayroll         SourceType = "payroll"
	SourceTypeBankTransaction SourceType = "bank_transaction"
	SourceTypeDailyCash       SourceType = "daily_cash"
	SourceTypeBankTransfer    SourceType = "bank_transfer"
)

var validSourceTypes = map[SourceType]bool{
	SourceTypeAdvance:         true,
	SourceTypeAdjustment:      true,
	SourceTypePayroll:         true,
	SourceTypeBankTransaction: true,
	SourceTypeDailyCash:       true,
	SourceTypeBankTransfer:    true,
}

// IsValid checks if the source type is one of the known types.
func (t SourceType) IsValid() bool {
	return validSourceTypes[t]
}

// AllSourceTypes returns every known source type in a stable order.
func AllSourceTypes() []SourceType {
	types := make([]SourceType, 0, len(validSourceTypes))
	for t := range validSourceTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// SourceRef points at a single source record.
type SourceRef struct {
	Type SourceType
	ID   string
}

func (r SourceRef) String() string {
	return string(r.Type) + "/" + r.ID
}

// Advance and adjustment transaction types.
const (
	TransactionTypePay      = "Pay"
	TransactionTypeReceived = "Received"
)

// Advance is money paid to or recovered from an employee.
type Advance struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	Branch          string
	TransactionType string
	Paid            decimal.NullDecimal
	Remarks         string
	// PayrollID links a payroll deduction to its payroll run.
	PayrollID *string
	// OriginAdjustmentID is set when this advance was generated from an adjustment.
	OriginAdjustmentID *string
	CreatedAt          time.Time
}

// Adjustment is a manual correction to an employee's advance balance.
type Adjustment struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Type       string
	Amount     decimal.NullDecimal
	Branch     string
	Remarks    string
	CreatedAt  time.Time
}

// Payroll is a monthly salary run for one employee.
type Payroll struct {
	ID         string
	EmployeeID string
	MonthYear  string // YYYY-MM
	Branch     string
	NetTotal   decimal.NullDecimal
	CreatedAt  time.Time
}

// PeriodEnd returns the last calendar day of the payroll month.
func (p *Payroll) PeriodEnd() (time.Time, error) {
	month, err := time.Parse("2006-01", strings.TrimSpace(p.MonthYear))
	if err != nil {
		return time.Time{}, ErrInvalidPayrollMonth
	}
	return month.AddDate(0, 1, -1), nil
}

// BankTransaction is a direct deposit or payment on a bank account.
type BankTransaction struct {
	ID     string
	BankID string
	Date   time.Time
	Type   string
	// TransactionType is the legacy direction field written by older clients.
	TransactionType string
	RefType         string
	Amount          decimal.NullDecimal
	Narration       string
	Remarks         string
	InvoiceNo       string
	ChequeDate      *time.Time
	IsVerified      bool
	VerifiedDate    *time.Time
	CreatedAt       time.Time
}

// RefTypeBankTransfer marks bank transactions mirrored from a bank transfer.
const RefTypeBankTransfer = "bank_transfer"

var inflowTypes = map[string]bool{
	"deposit":         true,
	"received":        true,
	"receipt":         true,
	"opening balance": true,
}

// IsInflow reports whether the transaction increases the bank balance.
// Both the current and the legacy type field are consulted.
func (t *BankTransaction) IsInflow() bool {
	return inflowTypes[normalizeType(t.Type)] || inflowTypes[normalizeType(t.TransactionType)]
}

// IsTransferSourced reports whether the transaction is a copy of a bank transfer.
func (t *BankTransaction) IsTransferSourced() bool {
	if strings.EqualFold(strings.TrimSpace(t.RefType), RefTypeBankTransfer) {
		return true
	}
	return bankTransferNarration.MatchString(t.Narration)
}

func normalizeType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DailyCashBatch is a day's cash takings banked as one batch.
type DailyCashBatch struct {
	ID      string
	BankID  string
	Branch  string
	Mode    string
	BatchNo string
	Remarks string
	Date    time.Time
	// TotalAmount is the gross batch total.
	TotalAmount decimal.NullDecimal
	// DeductedAmount is a percentage rate, applied only when IsDeduction is set.
	DeductedAmount decimal.NullDecimal
	IsDeduction    bool
	IsVerified     bool
	VerifiedDate   *time.Time
	CreatedAt      time.Time
}

// DailyCashModeBank is the mode of batches deposited into a bank.
const DailyCashModeBank = "Bank"

// BankTransfer moves money between two banks.
type BankTransfer struct {
	ID           string
	Date         time.Time
	FromBankID   string
	ToBankID     string
	FromBankName string
	ToBankName   string
	Amount       decimal.NullDecimal
	Remarks      string
	BatchNo      string
	CreatedAt    time.Time
}

// Validate checks the transfer moves money between two distinct banks.
func (t *BankTransfer) Validate() error {
	if t.FromBankID == t.ToBankID {
		return ErrSameBank
	}
	return nil
}
