package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjholloway/coinsort/internal/engine"
	"github.com/mjholloway/coinsort/internal/model"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func entry(hash, description, categoryID string, amount string) engine.ConfirmEntry {
	return engine.ConfirmEntry{
		Hash:        hash,
		Description: description,
		CategoryID:  categoryID,
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString(amount),
		Type:        model.TypeExpense,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := testStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	err := store.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestCreateCategory(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Groceries", model.TypeExpense)
	require.NoError(t, err)
	assert.NotEmpty(t, cat.ID)
	assert.NotEmpty(t, cat.Color)
	assert.Equal(t, model.TypeExpense, cat.Type)

	fetched, err := store.CategoryByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", fetched.Name)
}

func TestCreateCategoryIsIdempotentPerNormalizedName(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	first, err := store.CreateCategory(ctx, "Café Madrid", model.TypeExpense)
	require.NoError(t, err)

	second, err := store.CreateCategory(ctx, "cafe   MADRID", model.TypeExpense)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Café Madrid", second.Name, "the original spelling is kept")

	// The same name with the other type is a distinct category.
	income, err := store.CreateCategory(ctx, "Cafe Madrid", model.TypeIncome)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, income.ID)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCreateCategoryRejectsUnusableNames(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, "", model.TypeExpense)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = store.CreateCategory(ctx, "???", model.TypeExpense)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCategoryByIDNotFound(t *testing.T) {
	store := testStorage(t)

	_, err := store.CategoryByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestConfirmImportSkipsExistingHashes(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	result, err := store.ConfirmImport(ctx, "acct-1", []engine.ConfirmEntry{
		entry("h1", "FIRST", "cat-1", "10.00"),
		entry("h2", "SECOND", "", "5.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	// Re-running the same chunk is a no-op, counted as skips.
	result, err = store.ConfirmImport(ctx, "acct-1", []engine.ConfirmEntry{
		entry("h1", "FIRST", "cat-1", "10.00"),
		entry("h3", "THIRD", "cat-2", "7.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	hashes, err := store.ExistingHashes(ctx)
	require.NoError(t, err)
	assert.Len(t, hashes, 3)
	assert.Contains(t, hashes, "h2")
}

func TestRecentTransactionsFiltersLearnableRows(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	_, err := store.ConfirmImport(ctx, "acct-1", []engine.ConfirmEntry{
		entry("h1", "CATEGORIZED", "cat-1", "10.00"),
		entry("h2", "UNCATEGORIZED", "", "5.00"),
		entry("h3", "", "cat-1", "1.00"),
	})
	require.NoError(t, err)

	txns, err := store.RecentTransactions(ctx, 50)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "CATEGORIZED", txns[0].Description)
	assert.Equal(t, "cat-1", txns[0].CategoryID)
	assert.True(t, txns[0].Amount.Equal(decimal.RequireFromString("10.00")))
}

func TestRecentTransactionsNewestFirst(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	older := entry("h1", "OLDER", "cat-1", "1.00")
	older.Date = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := entry("h2", "NEWER", "cat-1", "1.00")
	newer.Date = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.ConfirmImport(ctx, "acct-1", []engine.ConfirmEntry{older, newer})
	require.NoError(t, err)

	txns, err := store.RecentTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "NEWER", txns[0].Description)
}

func TestRulesRoundTrip(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := store.SaveRules(ctx, []model.CategoryRule{
		{Name: "older", Keyword: "a", CategoryID: "cat-1", Mode: model.MatchContains, AppliesTo: model.ScopeAll, CreatedAt: base},
		{Name: "newer", Keyword: "b", CategoryID: "cat-2", Mode: model.MatchStartsWith, AppliesTo: model.ScopeExpense, CreatedAt: base.Add(time.Hour)},
	})
	require.NoError(t, err)

	ruleset, err := store.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, ruleset, 2)
	assert.Equal(t, "newer", ruleset[0].Name, "rules come back newest first")
	assert.Equal(t, model.MatchStartsWith, ruleset[0].Mode)
	assert.Equal(t, model.ScopeExpense, ruleset[0].AppliesTo)
	assert.NotEmpty(t, ruleset[0].ID, "missing ids are filled on save")

	// Saving replaces the whole set.
	err = store.SaveRules(ctx, ruleset[:1])
	require.NoError(t, err)

	ruleset, err = store.Rules(ctx)
	require.NoError(t, err)
	assert.Len(t, ruleset, 1)
}
