// Package engine implements the import reconciliation and auto-categorization
// engine: it resolves a category for every previewed transaction through a
// priority-ordered chain of signal sources, creates missing categories on
// demand, tracks the user's review selection, and commits the final selection
// to the ledger in sequential chunks.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mjholloway/coinsort/internal/common"
	"github.com/mjholloway/coinsort/internal/history"
	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/rules"
)

const (
	// ChunkSize is the fixed number of transactions per commit request.
	ChunkSize = 100
	// HistoryDepth is how many recent confirmed transactions feed the
	// history learner at session start.
	HistoryDepth = 300
)

// Session owns all mutable state for one import: the candidate transactions,
// their review selections, suggestion sources, and the autocreation guard.
// A Session is single-threaded; all mutation happens in response to discrete
// events with no concurrent access.
type Session struct {
	ledger     Ledger
	ruleStore  RuleStore
	learner    *history.Learner
	preview    *model.ImportPreview
	txns       map[string]model.CandidateTransaction
	selections map[string]*model.Selection
	sources    map[string]model.SuggestionSource
	attempted  map[string]struct{}
	accountID  string
	order      []string
	categories []model.Category
	rules      []model.CategoryRule
}

// NewSession creates an import session for the given account.
func NewSession(ledger Ledger, ruleStore RuleStore, accountID string) *Session {
	return &Session{
		ledger:    ledger,
		ruleStore: ruleStore,
		accountID: accountID,
	}
}

// Load installs a preview into the session, snapshots categories, rules, and
// history from the ledger, creates one Selection per candidate transaction
// (duplicates start deselected), and runs the initial resolution pass.
// A nil or empty preview fails before any session state is created.
func (s *Session) Load(ctx context.Context, preview *model.ImportPreview) error {
	if preview == nil || len(preview.Transactions) == 0 {
		return common.ErrEmptyPreview
	}

	categories, err := s.ledger.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	ruleset, err := s.ruleStore.Rules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load category rules: %w", err)
	}
	rules.SortNewestFirst(ruleset)

	recent, err := s.ledger.RecentTransactions(ctx, HistoryDepth)
	if err != nil {
		return fmt.Errorf("failed to load recent transactions: %w", err)
	}

	s.preview = preview
	s.categories = categories
	s.rules = ruleset
	s.learner = history.Build(recent)
	s.txns = make(map[string]model.CandidateTransaction, len(preview.Transactions))
	s.selections = make(map[string]*model.Selection, len(preview.Transactions))
	s.sources = make(map[string]model.SuggestionSource)
	s.attempted = make(map[string]struct{})
	s.order = make([]string, 0, len(preview.Transactions))

	for _, txn := range preview.Transactions {
		if _, ok := s.txns[txn.Hash]; ok {
			continue
		}
		s.txns[txn.Hash] = txn
		s.order = append(s.order, txn.Hash)
		s.selections[txn.Hash] = &model.Selection{
			Selected:    !txn.IsDuplicate,
			Description: txn.Description,
		}
	}

	s.resolve()

	slog.Info("import session loaded",
		"account_id", s.accountID,
		"transactions", len(s.order),
		"duplicates", preview.DuplicatesFound,
		"rules", len(ruleset),
		"history_keys", s.learner.Len())

	return nil
}

// Refresh re-fetches categories and rules from their stores and re-runs
// resolution. Selections that already carry a category are never overwritten.
func (s *Session) Refresh(ctx context.Context) error {
	if s.preview == nil {
		return common.ErrEmptyPreview
	}

	categories, err := s.ledger.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload categories: %w", err)
	}

	ruleset, err := s.ruleStore.Rules(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload category rules: %w", err)
	}
	rules.SortNewestFirst(ruleset)

	s.categories = categories
	s.rules = ruleset
	s.resolve()

	return nil
}

// Reset discards all in-memory session state. Any response from an in-flight
// request for the old state must be ignored by the caller.
func (s *Session) Reset() {
	s.preview = nil
	s.learner = nil
	s.txns = nil
	s.selections = nil
	s.sources = nil
	s.attempted = nil
	s.order = nil
	s.categories = nil
	s.rules = nil
}

// Preview returns the loaded preview, or nil if none is loaded.
func (s *Session) Preview() *model.ImportPreview {
	return s.preview
}

// Transactions returns the candidate transactions in preview order.
func (s *Session) Transactions() []model.CandidateTransaction {
	out := make([]model.CandidateTransaction, 0, len(s.order))
	for _, hash := range s.order {
		out = append(out, s.txns[hash])
	}
	return out
}

// Selection returns a copy of the review state for a transaction hash.
func (s *Session) Selection(hash string) (model.Selection, bool) {
	sel, ok := s.selections[hash]
	if !ok {
		return model.Selection{}, false
	}
	return *sel, true
}

// Source reports why a category was proposed for a transaction, if any.
func (s *Session) Source(hash string) (model.SuggestionSource, bool) {
	src, ok := s.sources[hash]
	return src, ok
}

// Categories returns the session's current category snapshot.
func (s *Session) Categories() []model.Category {
	return s.categories
}
