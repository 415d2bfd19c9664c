package preview

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fingerprint computes the stable identity hash for a statement row. The
// same row imported twice must produce the same fingerprint, so only fields
// that survive re-export verbatim participate.
func Fingerprint(accountID string, date time.Time, amount decimal.Decimal, description string) string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		accountID,
		date.Format("2006-01-02"),
		amount.String(),
		description)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}
