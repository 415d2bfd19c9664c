package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/common"
	"github.com/mjholloway/coinsort/internal/model"
)

// Toggle flips the selected state of one transaction. Unknown hashes are
// ignored; mutations never invent a Selection.
func (s *Session) Toggle(hash string) {
	if sel, ok := s.selections[hash]; ok {
		sel.Selected = !sel.Selected
	}
}

// SetSelected sets the selected state of one transaction. Duplicates may be
// selected here; only automatic selection avoids them.
func (s *Session) SetSelected(hash string, selected bool) {
	if sel, ok := s.selections[hash]; ok {
		sel.Selected = selected
	}
}

// SelectAll sets the selected state of every transaction. Selecting never
// touches duplicates; deselecting clears everything.
func (s *Session) SelectAll(selected bool) {
	for _, hash := range s.order {
		if selected && s.txns[hash].IsDuplicate {
			continue
		}
		s.selections[hash].Selected = selected
	}
}

// SetCategory overrides the category of one transaction. An empty categoryID
// clears the assignment. The category must exist in the session snapshot and
// its type must match the transaction's type.
func (s *Session) SetCategory(hash, categoryID string) error {
	sel, ok := s.selections[hash]
	if !ok {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, hash)
	}

	if categoryID == "" {
		sel.CategoryID = ""
		delete(s.sources, hash)
		return nil
	}

	cat, ok := s.categoryByID(categoryID)
	if !ok {
		return fmt.Errorf("%w: category %s", common.ErrNotFound, categoryID)
	}
	if cat.Type != s.txns[hash].Type {
		return fmt.Errorf("%w: category %q is %s, transaction is %s",
			common.ErrCategoryTypeMismatch, cat.Name, cat.Type, s.txns[hash].Type)
	}

	sel.CategoryID = categoryID
	// A manual override is no longer a suggestion.
	delete(s.sources, hash)
	return nil
}

// SetDescription overrides the description committed for one transaction.
func (s *Session) SetDescription(hash, description string) {
	if sel, ok := s.selections[hash]; ok {
		sel.Description = description
	}
}

// SelectedCount returns the number of selected transactions.
func (s *Session) SelectedCount() int {
	count := 0
	for _, sel := range s.selections {
		if sel.Selected {
			count++
		}
	}
	return count
}

// SelectedIncomeTotal sums the amounts of selected income transactions.
func (s *Session) SelectedIncomeTotal() decimal.Decimal {
	return s.selectedTotal(model.TypeIncome)
}

// SelectedExpenseTotal sums the amounts of selected expense transactions.
func (s *Session) SelectedExpenseTotal() decimal.Decimal {
	return s.selectedTotal(model.TypeExpense)
}

func (s *Session) selectedTotal(txType model.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, hash := range s.order {
		sel := s.selections[hash]
		if !sel.Selected {
			continue
		}
		if txn := s.txns[hash]; txn.Type == txType {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// UncategorizedCount returns how many selected transactions still lack a
// category. These are shown to the user as fixable gaps, never errors.
func (s *Session) UncategorizedCount() int {
	count := 0
	for _, sel := range s.selections {
		if sel.Selected && sel.CategoryID == "" {
			count++
		}
	}
	return count
}

func (s *Session) categoryByID(id string) (model.Category, bool) {
	for _, cat := range s.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return model.Category{}, false
}
