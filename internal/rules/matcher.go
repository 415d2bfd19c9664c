// Package rules evaluates user-defined keyword rules against transaction
// descriptions.
package rules

import (
	"strings"

	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
)

// Match evaluates rules in their given order (newest-created first) and
// returns the category of the first rule whose scope admits the transaction
// type and whose keyword test succeeds against the description. An empty
// description never matches. The second return is false when no rule matched.
func Match(ruleset []model.CategoryRule, description string, txType model.TransactionType) (string, bool) {
	desc := normalize.Normalize(description)
	if desc == "" {
		return "", false
	}

	for _, rule := range ruleset {
		if !rule.AppliesTo.AppliesTo(txType) {
			continue
		}
		if matchesKeyword(desc, rule) {
			return rule.CategoryID, true
		}
	}

	return "", false
}

func matchesKeyword(desc string, rule model.CategoryRule) bool {
	keyword := normalize.Normalize(rule.Keyword)
	if keyword == "" {
		return false
	}

	switch rule.Mode {
	case model.MatchContains:
		return strings.Contains(desc, keyword)
	case model.MatchStartsWith:
		return strings.HasPrefix(desc, keyword)
	case model.MatchEndsWith:
		return strings.HasSuffix(desc, keyword)
	}

	return false
}

// SortNewestFirst orders rules by creation time descending, the precedence
// order Match expects. The input slice is sorted in place.
func SortNewestFirst(ruleset []model.CategoryRule) {
	for i := 0; i < len(ruleset)-1; i++ {
		for j := 0; j < len(ruleset)-i-1; j++ {
			if ruleset[j].CreatedAt.Before(ruleset[j+1].CreatedAt) {
				ruleset[j], ruleset[j+1] = ruleset[j+1], ruleset[j]
			}
		}
	}
}
