package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mjholloway/coinsort/internal/model"
)

// Rules returns all category rules, newest first. Rule precedence is
// creation order: the most recently created rule wins.
func (s *SQLiteStorage) Rules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, keyword, match_mode, applies_to, category_id, created_at
		FROM category_rules
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category rules: %w", err)
	}
	defer rows.Close()

	var ruleset []model.CategoryRule
	for rows.Next() {
		var r model.CategoryRule
		if err := rows.Scan(&r.ID, &r.Name, &r.Keyword, &r.Mode, &r.AppliesTo, &r.CategoryID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		ruleset = append(ruleset, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rules: %w", err)
	}

	return ruleset, nil
}

// SaveRules replaces the persisted rule set. Rules without an ID or creation
// time are treated as new.
func (s *SQLiteStorage) SaveRules(ctx context.Context, ruleset []model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM category_rules`); err != nil {
		return fmt.Errorf("failed to clear category rules: %w", err)
	}

	for _, r := range ruleset {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category_rules (id, name, keyword, match_mode, applies_to, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Keyword, r.Mode, r.AppliesTo, r.CategoryID, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert category rule %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category rules: %w", err)
	}

	return nil
}
