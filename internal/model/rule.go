package model

import "time"

// MatchMode determines how a rule keyword is tested against a description.
type MatchMode string

const (
	// MatchContains matches when the keyword appears anywhere in the description.
	MatchContains MatchMode = "contains"
	// MatchStartsWith matches when the description begins with the keyword.
	MatchStartsWith MatchMode = "startsWith"
	// MatchEndsWith matches when the description ends with the keyword.
	MatchEndsWith MatchMode = "endsWith"
)

// RuleScope restricts which transaction types a rule applies to.
type RuleScope string

const (
	// ScopeAll applies the rule to every transaction.
	ScopeAll RuleScope = "ALL"
	// ScopeExpense applies the rule to expense transactions only.
	ScopeExpense RuleScope = "EXPENSE"
	// ScopeIncome applies the rule to income transactions only.
	ScopeIncome RuleScope = "INCOME"
)

// AppliesTo reports whether the scope admits the given transaction type.
func (s RuleScope) AppliesTo(t TransactionType) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeExpense:
		return t == TypeExpense
	case ScopeIncome:
		return t == TypeIncome
	}
	return false
}

// CategoryRule is a user-defined keyword-to-category mapping. Rules are
// persisted independently of any import session and evaluated newest first.
// Rules are created and deleted but never mutated.
type CategoryRule struct {
	CreatedAt  time.Time
	ID         string
	Name       string
	Keyword    string
	CategoryID string
	Mode       MatchMode
	AppliesTo  RuleScope
}
