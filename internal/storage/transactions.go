package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/engine"
	"github.com/mjholloway/coinsort/internal/model"
)

// RecentTransactions returns the most recently confirmed non-transfer
// transactions that carry both a description and a category, newest first.
// This feeds the history learner at import session start.
func (s *SQLiteStorage) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = engine.HistoryDepth
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, account_id, date, description, amount, type, category_id, is_transfer, created_at
		FROM transactions
		WHERE is_transfer = 0 AND description != '' AND category_id != ''
		ORDER BY date DESC, created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// ExistingHashes returns the fingerprints of all transactions already in the
// ledger, used by previewers to flag duplicates.
func (s *SQLiteStorage) ExistingHashes(ctx context.Context) (map[string]struct{}, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT hash FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("failed to scan hash: %w", err)
		}
		hashes[h] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hashes: %w", err)
	}

	return hashes, nil
}

// ConfirmImport persists one chunk of selected transactions atomically.
// Rows whose hash already exists are skipped and counted, not treated as
// errors; re-running an interrupted import is safe.
func (s *SQLiteStorage) ConfirmImport(ctx context.Context, accountID string, entries []engine.ConfirmEntry) (engine.ConfirmResult, error) {
	var result engine.ConfirmResult

	if err := validateContext(ctx); err != nil {
		return result, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return result, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, hash, account_id, date, description, amount, type, category_id, suggested_category_id, confidence, is_transfer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`)
	if err != nil {
		return result, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx,
			uuid.NewString(), e.Hash, accountID, e.Date, e.Description,
			e.Amount.String(), e.Type, e.CategoryID, e.SuggestedCategoryID, e.Confidence, now)
		if err != nil {
			return engine.ConfirmResult{}, fmt.Errorf("failed to insert transaction %s: %w", e.Hash, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return engine.ConfirmResult{}, fmt.Errorf("failed to read insert result: %w", err)
		}
		if affected == 0 {
			result.Skipped++
		} else {
			result.Imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return engine.ConfirmResult{}, fmt.Errorf("failed to commit chunk: %w", err)
	}

	slog.Debug("confirmed import chunk",
		"account_id", accountID,
		"imported", result.Imported,
		"skipped", result.Skipped)

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var amount string
	if err := row.Scan(&txn.ID, &txn.Hash, &txn.AccountID, &txn.Date, &txn.Description,
		&amount, &txn.Type, &txn.CategoryID, &txn.IsTransfer, &txn.CreatedAt); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	txn.Amount = parsed

	return txn, nil
}
