package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mjholloway/coinsort/internal/common"
	"github.com/mjholloway/coinsort/internal/model"
)

// Result is the final summary of a committed import session.
type Result struct {
	Imported   int
	Skipped    int
	Duplicates int
}

// Commit submits the selected transactions to the ledger in fixed-size chunks,
// sequentially and in preview order. Before building the chunks it gives every
// still-uncategorized selection one last normalized-name resolution; anything
// still unresolved commits without a category.
//
// Chunks are at-most-once with no rollback: if a chunk submission fails the
// pipeline aborts immediately and returns the counts accumulated from prior
// chunks along with the error. Already-committed chunks stay committed; a
// retry re-runs the whole import and relies on duplicate detection to filter
// the rows that made it through.
func (s *Session) Commit(ctx context.Context, report ProgressFunc) (Result, error) {
	selected := s.selectedHashes()
	if len(selected) == 0 {
		return Result{}, common.ErrNothingSelected
	}

	idx := buildNameIndex(s.categories)

	entries := make([]ConfirmEntry, 0, len(selected))
	for _, hash := range selected {
		txn := s.txns[hash]
		sel := s.selections[hash]

		categoryID := sel.CategoryID
		if categoryID == "" {
			if name := candidateName(txn); name != "" {
				if id, ok := idx[nameKey(name, txn.Type)]; ok {
					categoryID = id
					s.assign(hash, id, model.SourceAuto)
				}
			}
		}

		entry := ConfirmEntry{
			Hash:        txn.Hash,
			CategoryID:  categoryID,
			Description: sel.Description,
			Date:        txn.Date,
			Amount:      txn.Amount,
			Type:        txn.Type,
		}
		if txn.Suggested != nil {
			entry.SuggestedCategoryID = txn.Suggested.CategoryID
			entry.Confidence = txn.Suggested.Confidence
		}
		entries = append(entries, entry)
	}

	chunks := chunkEntries(entries, ChunkSize)
	deselected := s.preview.TotalTransactions - len(selected)

	result := Result{Duplicates: s.preview.DuplicatesFound}
	serverSkipped := 0

	for i, chunk := range chunks {
		outcome, err := s.ledger.ConfirmImport(ctx, s.accountID, chunk)
		if err != nil {
			result.Skipped = deselected + serverSkipped
			return result, fmt.Errorf("failed to commit chunk %d of %d: %w", i+1, len(chunks), err)
		}
		result.Imported += outcome.Imported
		serverSkipped += outcome.Skipped

		if report != nil {
			report(Progress{Current: i + 1, Total: len(chunks)})
		}
	}

	// User-deselected rows count as skipped alongside server-side skips.
	result.Skipped = deselected + serverSkipped

	slog.Info("import committed",
		"account_id", s.accountID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"chunks", len(chunks))

	return result, nil
}

func (s *Session) selectedHashes() []string {
	hashes := make([]string, 0, len(s.order))
	for _, hash := range s.order {
		if s.selections[hash].Selected {
			hashes = append(hashes, hash)
		}
	}
	return hashes
}

func chunkEntries(entries []ConfirmEntry, size int) [][]ConfirmEntry {
	if size <= 0 {
		size = ChunkSize
	}
	chunks := make([][]ConfirmEntry, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
