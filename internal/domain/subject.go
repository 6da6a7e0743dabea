package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SubjectKind selects which ledger a subject belongs to.
type SubjectKind string

const (
	SubjectKindEmployee SubjectKind = "employee"
	SubjectKindBank     SubjectKind = "bank"
)

// IsValid checks if the kind is known.
func (k SubjectKind) IsValid() bool {
	return k == SubjectKindEmployee || k == SubjectKindBank
}

// Subject is the owner of a ledger.
type Subject struct {
	ID          string
	Kind        SubjectKind
	Name        string
	Branch      string
	OpeningSeed decimal.Decimal
}

// Employee is the static employee record.
type Employee struct {
	ID        string
	Code      string
	Name      string
	Branch    string
	Opening   decimal.NullDecimal
	Active    bool
	CreatedAt time.Time
}

// Subject returns the ledger view of the employee. A null opening seeds zero.
func (e *Employee) Subject() *Subject {
	return &Subject{
		ID:          e.ID,
		Kind:        SubjectKindEmployee,
		Name:        e.Name,
		Branch:      e.Branch,
		OpeningSeed: nullToZero(e.Opening),
	}
}

// BankTypeBranch is the bank type used for branch float accounts.
const BankTypeBranch = "Branch Bank"

// Bank is the static bank account record.
type Bank struct {
	ID             string
	BankName       string
	BankType       string
	Branch         string
	Department     string
	OpeningBalance decimal.NullDecimal
	Active         bool
	CreatedAt      time.Time
}

// Subject returns the ledger view of the bank.
func (b *Bank) Subject() *Subject {
	return &Subject{
		ID:          b.ID,
		Kind:        SubjectKindBank,
		Name:        b.DisplayName(),
		Branch:      b.Branch,
		OpeningSeed: nullToZero(b.OpeningBalance),
	}
}

// IsBranchBank reports whether the bank is a branch float account.
func (b *Bank) IsBranchBank() bool {
	return strings.EqualFold(strings.TrimSpace(b.BankType), BankTypeBranch)
}

// DisplayName returns "NAME (DEP)" where DEP is the first three letters of
// the department, unless the name already carries it.
func (b *Bank) DisplayName() string {
	name := strings.TrimSpace(b.BankName)
	abbr := departmentAbbreviation(b.Department)
	if abbr == "" {
		return name
	}
	suffix := "(" + abbr + ")"
	if strings.Contains(strings.ToUpper(name), suffix) {
		return name
	}
	return name + " " + suffix
}

func departmentAbbreviation(dep string) string {
	dep = strings.ToUpper(strings.TrimSpace(dep))
	runes := []rune(dep)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

func nullToZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
