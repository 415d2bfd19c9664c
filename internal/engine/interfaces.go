package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/model"
)

// Ledger defines the contract for category and transaction persistence.
type Ledger interface {
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string, txType model.TransactionType) (*model.Category, error)
	RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	ConfirmImport(ctx context.Context, accountID string, entries []ConfirmEntry) (ConfirmResult, error)
}

// RuleStore defines the contract for category rule persistence.
type RuleStore interface {
	Rules(ctx context.Context) ([]model.CategoryRule, error)
	SaveRules(ctx context.Context, ruleset []model.CategoryRule) error
}

// ConfirmEntry is one selected transaction submitted to the ledger.
// CategoryID may be empty; uncategorized imports are valid.
type ConfirmEntry struct {
	Date                time.Time
	Hash                string
	Description         string
	CategoryID          string
	SuggestedCategoryID string
	Type                model.TransactionType
	Amount              decimal.Decimal
	Confidence          float64
}

// ConfirmResult is the ledger's answer for one committed chunk.
type ConfirmResult struct {
	Imported int
	Skipped  int
}

// Progress reports chunk submission progress during a commit.
type Progress struct {
	Current int
	Total   int
}

// ProgressFunc receives progress updates after each committed chunk.
type ProgressFunc func(Progress)
