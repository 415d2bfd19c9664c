package engine

import (
	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
	"github.com/mjholloway/coinsort/internal/rules"
)

// resolve assigns a category to every non-duplicate transaction that does not
// already have one, trying each signal source in strict priority order:
//
//  1. user-defined keyword rules
//  2. learned history associations
//  3. the classifier's suggested category id
//  4. normalized-name lookup of the classifier's suggested name
//  5. normalized-name lookup of the name derived from the description
//
// The pass is idempotent: a Selection that already carries a category is
// never touched, so re-running after new rules or categories arrive only
// fills gaps.
func (s *Session) resolve() {
	idx := buildNameIndex(s.categories)

	for _, hash := range s.order {
		txn := s.txns[hash]
		sel := s.selections[hash]
		if txn.IsDuplicate || sel.CategoryID != "" {
			continue
		}

		if id, ok := rules.Match(s.rules, txn.Description, txn.Type); ok {
			s.assign(hash, id, model.SourceRule)
			continue
		}

		if id, ok := s.learner.Lookup(txn.Type, txn.Description); ok {
			s.assign(hash, id, model.SourceHistory)
			continue
		}

		if sug := txn.Suggested; sug != nil {
			if sug.CategoryID != "" {
				s.assign(hash, sug.CategoryID, model.SourceAuto)
				continue
			}
			if id, ok := idx[nameKey(sug.CategoryName, txn.Type)]; ok {
				s.assign(hash, id, model.SourceAuto)
				continue
			}
		}

		if derived := normalize.DeriveName(txn.Description); derived != "" {
			if id, ok := idx[nameKey(derived, txn.Type)]; ok {
				s.assign(hash, id, model.SourceAuto)
			}
		}
	}
}

func (s *Session) assign(hash, categoryID string, source model.SuggestionSource) {
	s.selections[hash].CategoryID = categoryID
	s.sources[hash] = source
}

// buildNameIndex maps normalized (type, name) pairs to category ids. It is
// recomputed from the current category snapshot on each pass rather than
// mutated in place.
func buildNameIndex(categories []model.Category) map[string]string {
	idx := make(map[string]string, len(categories))
	for _, cat := range categories {
		k := nameKey(cat.Name, cat.Type)
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = cat.ID
		}
	}
	return idx
}

func nameKey(name string, txType model.TransactionType) string {
	k := normalize.Key(name)
	if k == "" {
		return ""
	}
	return string(txType) + "|" + k
}
