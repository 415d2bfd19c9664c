package model

import "time"

// DateRange is the span of transaction dates covered by a preview.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ImportPreview is the provider-parsed batch of candidate transactions
// produced by a statement previewer before any reconciliation work.
type ImportPreview struct {
	DetectedFormat    string
	DetectedCurrency  string
	Transactions      []CandidateTransaction
	DateRange         DateRange
	TotalTransactions int
	DuplicatesFound   int
}

// Selection is the per-session mutable review state for one candidate
// transaction, keyed by its hash. Created when a preview is loaded and
// destroyed on session reset; never created or removed by later mutations.
type Selection struct {
	CategoryID  string
	Description string
	Selected    bool
}

// SuggestionSource records why a category was proposed for a transaction.
// Purely informational; it never affects commit behavior.
type SuggestionSource string

const (
	// SourceRule means a user-defined keyword rule matched.
	SourceRule SuggestionSource = "rule"
	// SourceHistory means a learned association from past confirmed transactions matched.
	SourceHistory SuggestionSource = "history"
	// SourceAuto means the classifier signal, a name lookup, or autocreation supplied the category.
	SourceAuto SuggestionSource = "auto"
)
