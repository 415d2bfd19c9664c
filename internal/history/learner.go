// Package history builds a description-to-category memory from previously
// confirmed transactions.
package history

import (
	"log/slog"

	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
)

// Association is one learned description-to-category pairing. CategoryID is
// fixed to the first pairing discovered for a key; Count accumulates across
// later occurrences and is used only for display, never for resolution.
type Association struct {
	CategoryID string
	Count      int
}

// Learner holds learned associations for one import session. It is built
// fresh from recent ledger history each time a session starts and is never
// persisted.
type Learner struct {
	assoc map[string]*Association
}

// Build constructs a Learner from recent confirmed transactions, expected in
// newest-first order. Transfers and rows missing a description or category
// are ignored. The first categorization observed for a key wins; later
// occurrences only increment its count.
func Build(txns []model.Transaction) *Learner {
	l := &Learner{assoc: make(map[string]*Association)}

	for _, txn := range txns {
		if txn.IsTransfer || txn.Description == "" || txn.CategoryID == "" {
			continue
		}
		k := key(txn.Type, txn.Description)
		if k == "" {
			continue
		}
		if existing, ok := l.assoc[k]; ok {
			existing.Count++
			continue
		}
		l.assoc[k] = &Association{CategoryID: txn.CategoryID, Count: 1}
	}

	slog.Debug("built history associations", "keys", len(l.assoc), "transactions", len(txns))
	return l
}

// Lookup returns the learned category for a transaction type and description.
func (l *Learner) Lookup(txType model.TransactionType, description string) (string, bool) {
	if l == nil {
		return "", false
	}
	k := key(txType, description)
	if k == "" {
		return "", false
	}
	if a, ok := l.assoc[k]; ok {
		return a.CategoryID, true
	}
	return "", false
}

// Association returns the full learned record for UI display.
func (l *Learner) Association(txType model.TransactionType, description string) (Association, bool) {
	if l == nil {
		return Association{}, false
	}
	if a, ok := l.assoc[key(txType, description)]; ok {
		return *a, true
	}
	return Association{}, false
}

// Len reports the number of learned keys.
func (l *Learner) Len() int {
	if l == nil {
		return 0
	}
	return len(l.assoc)
}

func key(txType model.TransactionType, description string) string {
	desc := normalize.Normalize(description)
	if desc == "" {
		return ""
	}
	return string(txType) + "-" + desc
}
