package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
)

// defaultColors is the palette cycled through for newly created categories.
var defaultColors = []string{
	"#e45858", "#e49a58", "#e4d058", "#8fd158",
	"#58c9b9", "#5890e4", "#9a58e4", "#e458b0",
}

// Categories returns all categories ordered by name.
func (s *SQLiteStorage) Categories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, color, created_at
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// CategoryByID returns a single category.
func (s *SQLiteStorage) CategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, color, created_at
		FROM categories
		WHERE id = ?`, id).Scan(&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory creates a category, or returns the existing one when a
// category with the same normalized name and type already exists. Creation
// must be idempotent per logical name so the autocreation pass can never
// produce duplicates.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, txType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	existing, err := s.findCategoryByNormalizedName(ctx, name, txType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		slog.Debug("category already exists, reusing", "name", existing.Name, "type", existing.Type)
		return existing, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	cat := model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      txType,
		Color:     defaultColors[count%len(defaultColors)],
		CreatedAt: time.Now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, color, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Type, cat.Color, cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created category", "name", cat.Name, "type", cat.Type)
	return &cat, nil
}

// findCategoryByNormalizedName compares by normalized key rather than raw
// name so "Café Madrid" and "cafe madrid" resolve to the same category.
func (s *SQLiteStorage) findCategoryByNormalizedName(ctx context.Context, name string, txType model.TransactionType) (*model.Category, error) {
	key := normalize.Key(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name normalizes to empty", ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, color, created_at
		FROM categories
		WHERE type = ?`, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if normalize.Key(cat.Name) == key {
			return &cat, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return nil, nil
}
