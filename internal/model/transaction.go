// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of money movement.
type TransactionType string

const (
	// TypeIncome represents money coming into the account.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense represents money leaving the account.
	TypeExpense TransactionType = "EXPENSE"
)

// CategorySuggestion is an opaque classifier signal attached to a candidate
// transaction by the statement previewer. Confidence is in [0,1].
type CategorySuggestion struct {
	CategoryID   string
	CategoryName string
	Confidence   float64
}

// CandidateTransaction is a parsed, not-yet-committed statement row.
// Hash is the stable fingerprint used as identity everywhere downstream;
// the struct is immutable once produced by the previewer.
type CandidateTransaction struct {
	Date        time.Time
	Suggested   *CategorySuggestion
	Hash        string
	Description string
	Type        TransactionType
	Amount      decimal.Decimal
	IsDuplicate bool
}

// Transaction is a confirmed row in the ledger.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string
	Hash        string
	AccountID   string
	Description string
	CategoryID  string
	Type        TransactionType
	Amount      decimal.Decimal
	IsTransfer  bool
}
