package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/date"
)

// EntryKind distinguishes money leaving from money arriving.
type EntryKind string

const (
	KindExpense EntryKind = "expense"
	KindIncome  EntryKind = "income"
)

// Recurrence names how a series repeats.
type Recurrence string

const (
	RecurrenceNone        Recurrence = "none"
	RecurrenceMonthly     Recurrence = "monthly"
	RecurrenceBiweekly    Recurrence = "biweekly"
	RecurrenceWeekly      Recurrence = "weekly"
	RecurrenceInstallment Recurrence = "installment"
)

// Account represents an account row. Balance is a cached derivation: the
// opening balance plus every paid contribution, written only through
// AdjustBalance.
type Account struct {
	ID             int64
	UUID           string
	Name           string
	OpeningBalance decimal.Decimal
	Balance        decimal.Decimal
	Currency       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Card represents a revolving-credit card. Every card entry settles
// immediately into AccountID, so the card carries no balance of its own.
type Card struct {
	ID          int64
	UUID        string
	Name        string
	Issuer      string
	DueDay      int
	ClosingDay  int
	CreditLimit decimal.Decimal
	AccountID   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category represents a category row. Identity is the (uuid, kind) pair;
// ParentID links subcategories to their top-level category.
type Category struct {
	ID          int64
	UUID        string
	Kind        EntryKind
	Name        string
	Subcategory *string
	Icon        *string
	Color       *string
	ParentID    *int64
}

// TargetKind tags a SettlementTarget variant.
type TargetKind int

const (
	TargetAccount TargetKind = iota + 1
	TargetCard
)

// SettlementTarget is the account or card an entry is charged against.
// Exactly one variant is ever set.
type SettlementTarget struct {
	Kind      TargetKind
	AccountID int64
	CardID    int64
}

// AccountTarget returns a target charging an account directly.
func AccountTarget(accountID int64) SettlementTarget {
	return SettlementTarget{Kind: TargetAccount, AccountID: accountID}
}

// CardTarget returns a target charging a card.
func CardTarget(cardID int64) SettlementTarget {
	return SettlementTarget{Kind: TargetCard, CardID: cardID}
}

// Entry represents one ledger line.
type Entry struct {
	ID               int64
	GroupID          string
	Kind             EntryKind
	Amount           decimal.Decimal
	Paid             bool
	Split            bool
	Transfer         bool
	DueDate          date.Date
	PurchaseDate     date.Date
	Description      string
	CategoryID       *int64
	AccountID        *int64
	CardID           *int64
	Recurrence       Recurrence
	InstallmentIndex *int
	InstallmentTotal *int
	Notified         bool
	Currency         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Signed returns the entry's balance contribution: +amount for income,
// -amount for expense. The split flag does not change this.
func (e Entry) Signed() decimal.Decimal {
	if e.Kind == KindIncome {
		return e.Amount
	}
	return e.Amount.Neg()
}

// Reported returns the amount used for category reporting: half when the
// entry is split, the full amount otherwise.
func (e Entry) Reported() decimal.Decimal {
	if e.Split {
		return e.Amount.Div(decimal.NewFromInt(2))
	}
	return e.Amount
}

// Target returns the entry's settlement target.
func (e Entry) Target() SettlementTarget {
	if e.CardID != nil {
		return CardTarget(*e.CardID)
	}
	if e.AccountID != nil {
		return AccountTarget(*e.AccountID)
	}
	return SettlementTarget{}
}

// SetTarget rewrites the entry's settlement columns from a target value.
func (e *Entry) SetTarget(t SettlementTarget) {
	e.AccountID, e.CardID = nil, nil
	switch t.Kind {
	case TargetAccount:
		id := t.AccountID
		e.AccountID = &id
	case TargetCard:
		id := t.CardID
		e.CardID = &id
	}
}
