package model

import "time"

// Category represents a spending or income category owned by the ledger.
// Categories may pre-exist or be created on demand during an import.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Color     string
	Type      TransactionType
}
