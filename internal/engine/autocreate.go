package engine

import (
	"context"
	"log/slog"

	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
)

// AutocreateCategories eliminates categorization gaps by creating missing
// categories in the ledger, then back-filling affected selections.
//
// For each non-duplicate, still-uncategorized transaction it computes a
// candidate name (the classifier's suggested name, else the name derived from
// the description). Candidates whose normalized name already exists for the
// transaction type, or that were already attempted this session, are skipped;
// the rest are created sequentially, one request per unique (name, type)
// pair. A failed creation drops that candidate for the session and the pass
// continues. Returns the number of categories created.
func (s *Session) AutocreateCategories(ctx context.Context) int {
	idx := buildNameIndex(s.categories)

	type candidate struct {
		name   string
		txType model.TransactionType
	}
	var pending []candidate

	for _, hash := range s.order {
		txn := s.txns[hash]
		sel := s.selections[hash]
		if txn.IsDuplicate || sel.CategoryID != "" {
			continue
		}

		name := candidateName(txn)
		if name == "" {
			continue
		}
		k := nameKey(name, txn.Type)
		if k == "" {
			continue
		}
		if _, exists := idx[k]; exists {
			continue
		}
		if _, seen := s.attempted[k]; seen {
			continue
		}
		s.attempted[k] = struct{}{}
		pending = append(pending, candidate{name: name, txType: txn.Type})
	}

	created := 0
	for _, c := range pending {
		cat, err := s.ledger.CreateCategory(ctx, c.name, c.txType)
		if err != nil {
			slog.Warn("category creation failed, dropping candidate",
				"name", c.name,
				"type", c.txType,
				"error", err)
			continue
		}
		s.categories = append(s.categories, *cat)
		created++
	}

	if created > 0 {
		slog.Info("created missing categories", "count", created, "attempted", len(pending))
		s.backfill()
	}

	return created
}

// backfill re-runs the normalized-name lookup against the updated category
// set so selections whose candidate name now exists pick up a category.
func (s *Session) backfill() {
	idx := buildNameIndex(s.categories)

	for _, hash := range s.order {
		txn := s.txns[hash]
		sel := s.selections[hash]
		if txn.IsDuplicate || sel.CategoryID != "" {
			continue
		}
		name := candidateName(txn)
		if name == "" {
			continue
		}
		if id, ok := idx[nameKey(name, txn.Type)]; ok {
			s.assign(hash, id, model.SourceAuto)
		}
	}
}

// candidateName picks the name a missing category would be created under:
// the classifier's suggested name when present, else the derived name.
func candidateName(txn model.CandidateTransaction) string {
	if txn.Suggested != nil && txn.Suggested.CategoryName != "" {
		return txn.Suggested.CategoryName
	}
	return normalize.DeriveName(txn.Description)
}
