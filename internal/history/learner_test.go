package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mjholloway/coinsort/internal/model"
)

func confirmed(txType model.TransactionType, description, categoryID string) model.Transaction {
	return model.Transaction{
		Type:        txType,
		Description: description,
		CategoryID:  categoryID,
	}
}

func TestBuildFirstCategorizationWins(t *testing.T) {
	// Newest first: the most recent categorization of a description is the
	// one the learner keeps.
	l := Build([]model.Transaction{
		confirmed(model.TypeExpense, "NETFLIX.COM", "cat-streaming"),
		confirmed(model.TypeExpense, "netflix.com", "cat-entertainment"),
		confirmed(model.TypeExpense, "NETFLIX.COM", "cat-entertainment"),
	})

	id, ok := l.Lookup(model.TypeExpense, "Netflix.com")
	assert.True(t, ok)
	assert.Equal(t, "cat-streaming", id)

	a, ok := l.Association(model.TypeExpense, "netflix.com")
	assert.True(t, ok)
	assert.Equal(t, 3, a.Count)
	assert.Equal(t, 1, l.Len())
}

func TestBuildSkipsUnusableRows(t *testing.T) {
	l := Build([]model.Transaction{
		{Type: model.TypeExpense, Description: "SAVINGS MOVE", CategoryID: "cat-x", IsTransfer: true},
		confirmed(model.TypeExpense, "", "cat-x"),
		confirmed(model.TypeExpense, "UNCATEGORIZED ROW", ""),
	})

	assert.Equal(t, 0, l.Len())
}

func TestLookupKeyedByType(t *testing.T) {
	l := Build([]model.Transaction{
		confirmed(model.TypeExpense, "PAYPAL", "cat-shopping"),
		confirmed(model.TypeIncome, "PAYPAL", "cat-refunds"),
	})

	expenseID, ok := l.Lookup(model.TypeExpense, "paypal")
	assert.True(t, ok)
	assert.Equal(t, "cat-shopping", expenseID)

	incomeID, ok := l.Lookup(model.TypeIncome, "paypal")
	assert.True(t, ok)
	assert.Equal(t, "cat-refunds", incomeID)
}

func TestLookupMisses(t *testing.T) {
	l := Build([]model.Transaction{
		confirmed(model.TypeExpense, "KNOWN", "cat-x"),
	})

	_, ok := l.Lookup(model.TypeExpense, "UNKNOWN")
	assert.False(t, ok)

	_, ok = l.Lookup(model.TypeExpense, "")
	assert.False(t, ok)
}

func TestNilLearnerIsSafe(t *testing.T) {
	var l *Learner

	_, ok := l.Lookup(model.TypeExpense, "anything")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}
