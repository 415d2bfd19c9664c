package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mjholloway/coinsort/internal/model"
)

func rule(name, keyword, categoryID string, mode model.MatchMode, scope model.RuleScope, createdAt time.Time) model.CategoryRule {
	return model.CategoryRule{
		ID:         name,
		Name:       name,
		Keyword:    keyword,
		CategoryID: categoryID,
		Mode:       mode,
		AppliesTo:  scope,
		CreatedAt:  createdAt,
	}
}

func TestMatch(t *testing.T) {
	now := time.Now()
	ruleset := []model.CategoryRule{
		rule("streaming", "netflix", "cat-streaming", model.MatchContains, model.ScopeAll, now),
		rule("salary", "acme corp", "cat-salary", model.MatchStartsWith, model.ScopeIncome, now.Add(-time.Hour)),
		rule("fees", "fee", "cat-fees", model.MatchEndsWith, model.ScopeExpense, now.Add(-2*time.Hour)),
	}

	tests := []struct {
		name       string
		desc       string
		txType     model.TransactionType
		expectedID string
		matched    bool
	}{
		{
			name:       "contains match is case and accent insensitive",
			desc:       "PAGO NÉTFLIX MADRID",
			txType:     model.TypeExpense,
			expectedID: "cat-streaming",
			matched:    true,
		},
		{
			name:       "startsWith match",
			desc:       "ACME CORP PAYROLL MAR",
			txType:     model.TypeIncome,
			expectedID: "cat-salary",
			matched:    true,
		},
		{
			name:    "startsWith rejects mid-string hit",
			desc:    "TRANSFER FROM ACME CORP",
			txType:  model.TypeIncome,
			matched: false,
		},
		{
			name:       "endsWith match",
			desc:       "MONTHLY ACCOUNT FEE",
			txType:     model.TypeExpense,
			expectedID: "cat-fees",
			matched:    true,
		},
		{
			name:    "scope filters transaction type",
			desc:    "ACME CORP PAYROLL",
			txType:  model.TypeExpense,
			matched: false,
		},
		{
			name:    "empty description never matches",
			desc:    "",
			txType:  model.TypeExpense,
			matched: false,
		},
		{
			name:    "no rule matches",
			desc:    "SOMETHING ELSE",
			txType:  model.TypeExpense,
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Match(ruleset, tt.desc, tt.txType)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	now := time.Now()
	ruleset := []model.CategoryRule{
		rule("newer", "coffee", "cat-newer", model.MatchContains, model.ScopeAll, now),
		rule("older", "coffee", "cat-older", model.MatchContains, model.ScopeAll, now.Add(-time.Hour)),
	}

	id, ok := Match(ruleset, "COFFEE SHOP", model.TypeExpense)
	assert.True(t, ok)
	assert.Equal(t, "cat-newer", id)
}

func TestMatchEmptyKeywordNeverMatches(t *testing.T) {
	ruleset := []model.CategoryRule{
		rule("blank", "   ", "cat-blank", model.MatchContains, model.ScopeAll, time.Now()),
	}

	_, ok := Match(ruleset, "anything", model.TypeExpense)
	assert.False(t, ok)
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ruleset := []model.CategoryRule{
		rule("a", "a", "a", model.MatchContains, model.ScopeAll, base),
		rule("c", "c", "c", model.MatchContains, model.ScopeAll, base.Add(2*time.Hour)),
		rule("b", "b", "b", model.MatchContains, model.ScopeAll, base.Add(time.Hour)),
	}

	SortNewestFirst(ruleset)

	assert.Equal(t, "c", ruleset[0].Name)
	assert.Equal(t, "b", ruleset[1].Name)
	assert.Equal(t, "a", ruleset[2].Name)
}
