package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"

	// SchemaVersion tags the persisted state record.
	SchemaVersion = 1

	// DefaultCurrency is the single supported currency.
	DefaultCurrency = "BRL"

	// IncomeCategory is the fixed category label assigned to income
	// transactions; user-chosen categories apply to expenses only.
	IncomeCategory = "Receita"
)

// DefaultCategories is the built-in expense category list. The first
// entry is the default form selection.
var DefaultCategories = []string{
	"Alimentação",
	"Moradia",
	"Transporte",
	"Saúde",
	"Lazer",
	"Educação",
	"Outros",
}

type (
	TransactionType string

	// Transaction is a single recorded cash movement. Immutable after
	// creation except for full deletion by id.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// Goal is a savings target with manually-recorded progress,
	// independent of the transaction balance.
	Goal struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Target    Money     `json:"target"`
		Saved     Money     `json:"saved"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// AppState is the single persisted aggregate root. Transactions and
	// goals are owned exclusively by its collections.
	AppState struct {
		Version      int           `json:"version"`
		CurrencyCode string        `json:"currencyCode"`
		Categories   []string      `json:"categories"`
		Transactions []Transaction `json:"transactions"`
		Goals        []Goal        `json:"goals"`
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrShortDescription = errors.New("description must have at least 2 characters")
	ErrEmptyCategory    = errors.New("empty category")
	ErrShortName        = errors.New("name must have at least 2 characters")
	ErrInvalidTarget    = errors.New("target must be greater than zero")
)

// IsValid reports whether t is one of the two known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// DefaultState returns the empty state a fresh install starts from.
// Collections are non-nil so the serialized record always carries arrays.
func DefaultState() AppState {
	return AppState{
		Version:      SchemaVersion,
		CurrencyCode: DefaultCurrency,
		Categories:   append([]string(nil), DefaultCategories...),
		Transactions: []Transaction{},
		Goals:        []Goal{},
	}
}

// Clone returns a deep copy. Snapshots handed to readers must never alias
// the owned collections.
func (s AppState) Clone() AppState {
	out := s
	out.Categories = append([]string(nil), s.Categories...)
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Goals = append([]Goal(nil), s.Goals...)
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	if out.Goals == nil {
		out.Goals = []Goal{}
	}
	return out
}

// TransactionDraft carries the user input for a new transaction. The form
// guarantees these constraints before the store assigns identity, so
// Validate is the single checkpoint.
type TransactionDraft struct {
	Type        TransactionType
	Date        Date
	Amount      Money
	Description string
	Category    string
}

func (d TransactionDraft) Validate() error {
	if !d.Type.IsValid() {
		return ErrInvalidType
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(d.Description)) < 2 {
		return ErrShortDescription
	}
	if d.Type == TypeExpense && strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// GoalDraft carries the user input for a new savings goal.
type GoalDraft struct {
	Name   string
	Target Money
}

func (d GoalDraft) Validate() error {
	if len(strings.TrimSpace(d.Name)) < 2 {
		return ErrShortName
	}
	if !d.Target.IsPositive() {
		return ErrInvalidTarget
	}
	return nil
}
