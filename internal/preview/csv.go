package preview

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/model"
)

// csvRow is one line of a generic CSV bank export. The category column is
// optional; when present it becomes a name-only classifier suggestion.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Category    string `csv:"category"`
}

var csvDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// csvSuggestionConfidence is attached to name-only suggestions coming from a
// CSV category column. The value is below any auto-accept threshold a caller
// might apply; the engine treats it as opaque either way.
const csvSuggestionConfidence = 0.5

func parseCSV(r io.Reader, accountID string) ([]model.CandidateTransaction, string, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, "", fmt.Errorf("failed to parse CSV statement: %w", err)
	}

	var txns []model.CandidateTransaction
	currency := ""

	for i, row := range rows {
		date, err := parseCSVDate(row.Date)
		if err != nil {
			return nil, "", fmt.Errorf("row %d: %w", i+1, err)
		}

		raw := strings.ReplaceAll(strings.TrimSpace(row.Amount), ",", "")
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, "", fmt.Errorf("row %d: failed to parse amount %q: %w", i+1, row.Amount, err)
		}

		txType := model.TypeIncome
		if amount.IsNegative() {
			txType = model.TypeExpense
			amount = amount.Abs()
		}

		description := strings.TrimSpace(row.Description)

		txn := model.CandidateTransaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Type:        txType,
			Hash:        Fingerprint(accountID, date, amount, description),
		}
		if name := strings.TrimSpace(row.Category); name != "" {
			txn.Suggested = &model.CategorySuggestion{
				CategoryName: name,
				Confidence:   csvSuggestionConfidence,
			}
		}

		if currency == "" && row.Currency != "" {
			currency = strings.ToUpper(strings.TrimSpace(row.Currency))
		}

		txns = append(txns, txn)
	}

	return txns, currency, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
