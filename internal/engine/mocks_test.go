package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/model"
)

// fakeLedger is an in-memory Ledger for session tests.
type fakeLedger struct {
	categories []model.Category
	recent     []model.Transaction
	committed  [][]ConfirmEntry

	createErr     error
	createCalls   int
	confirmErr    error
	confirmErrAt  int // 1-based chunk index that fails; 0 means confirmErr applies to every chunk
	confirmCalls  int
	serverSkipped map[string]struct{} // hashes the ledger reports as already present
}

func (f *fakeLedger) Categories(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeLedger) CreateCategory(_ context.Context, name string, txType model.TransactionType) (*model.Category, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	cat := model.Category{
		ID:        fmt.Sprintf("cat-%d", len(f.categories)+1),
		Name:      name,
		Type:      txType,
		CreatedAt: time.Now(),
	}
	f.categories = append(f.categories, cat)
	return &cat, nil
}

func (f *fakeLedger) RecentTransactions(_ context.Context, _ int) ([]model.Transaction, error) {
	return f.recent, nil
}

func (f *fakeLedger) ConfirmImport(_ context.Context, _ string, entries []ConfirmEntry) (ConfirmResult, error) {
	f.confirmCalls++
	if f.confirmErr != nil && (f.confirmErrAt == 0 || f.confirmErrAt == f.confirmCalls) {
		return ConfirmResult{}, f.confirmErr
	}
	f.committed = append(f.committed, entries)

	result := ConfirmResult{}
	for _, e := range entries {
		if _, skip := f.serverSkipped[e.Hash]; skip {
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// fakeRuleStore is an in-memory RuleStore for session tests.
type fakeRuleStore struct {
	rules []model.CategoryRule
}

func (f *fakeRuleStore) Rules(_ context.Context) ([]model.CategoryRule, error) {
	out := make([]model.CategoryRule, len(f.rules))
	copy(out, f.rules)
	return out, nil
}

func (f *fakeRuleStore) SaveRules(_ context.Context, ruleset []model.CategoryRule) error {
	f.rules = ruleset
	return nil
}

func candidate(hash, description string, txType model.TransactionType, amount string) model.CandidateTransaction {
	return model.CandidateTransaction{
		Hash:        hash,
		Description: description,
		Type:        txType,
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func previewOf(txns ...model.CandidateTransaction) *model.ImportPreview {
	duplicates := 0
	for _, txn := range txns {
		if txn.IsDuplicate {
			duplicates++
		}
	}
	return &model.ImportPreview{
		Transactions:      txns,
		TotalTransactions: len(txns),
		DuplicatesFound:   duplicates,
	}
}

func loadedSession(t *testing.T, ledger *fakeLedger, ruleStore *fakeRuleStore, preview *model.ImportPreview) *Session {
	t.Helper()
	s := NewSession(ledger, ruleStore, "acct-1")
	if err := s.Load(context.Background(), preview); err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return s
}
