// Package preview parses bank statement exports into candidate transactions
// and flags rows already present in the ledger. It sits outside the engine:
// the engine consumes whatever preview a Previewer produces.
package preview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mjholloway/coinsort/internal/common"
	"github.com/mjholloway/coinsort/internal/model"
)

// Format identifies a supported statement file format.
type Format string

const (
	// FormatCSV is a comma-separated export.
	FormatCSV Format = "csv"
	// FormatOFX is an OFX or QFX (Quicken) export.
	FormatOFX Format = "ofx"
)

// DuplicateChecker reports which fingerprints already exist in the ledger.
type DuplicateChecker interface {
	ExistingHashes(ctx context.Context) (map[string]struct{}, error)
}

// Previewer parses statement files into import previews.
type Previewer struct {
	checker DuplicateChecker
}

// NewPreviewer creates a previewer that flags duplicates via checker.
func NewPreviewer(checker DuplicateChecker) *Previewer {
	return &Previewer{checker: checker}
}

// DetectFormat infers the statement format from a file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	}
	return "", fmt.Errorf("%w: %s", common.ErrUnknownFormat, filename)
}

// Preview parses a statement and assembles the import preview: fingerprints,
// duplicate flags, totals, and the covered date range. An empty or
// unparseable statement fails here, before any session state exists.
func (p *Previewer) Preview(ctx context.Context, r io.Reader, format Format, accountID string) (*model.ImportPreview, error) {
	var (
		txns     []model.CandidateTransaction
		currency string
		err      error
	)

	switch format {
	case FormatCSV:
		txns, currency, err = parseCSV(r, accountID)
	case FormatOFX:
		txns, currency, err = parseOFX(r, accountID)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, common.ErrEmptyPreview
	}

	existing, err := p.checker.ExistingHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing hashes: %w", err)
	}

	duplicates := 0
	seen := make(map[string]struct{}, len(txns))
	for i := range txns {
		_, inLedger := existing[txns[i].Hash]
		_, inFile := seen[txns[i].Hash]
		if inLedger || inFile {
			txns[i].IsDuplicate = true
			duplicates++
		}
		seen[txns[i].Hash] = struct{}{}
	}

	dr := model.DateRange{Start: txns[0].Date, End: txns[0].Date}
	for _, txn := range txns[1:] {
		if txn.Date.Before(dr.Start) {
			dr.Start = txn.Date
		}
		if txn.Date.After(dr.End) {
			dr.End = txn.Date
		}
	}

	slog.Info("parsed statement preview",
		"format", format,
		"transactions", len(txns),
		"duplicates", duplicates,
		"currency", currency)

	return &model.ImportPreview{
		Transactions:      txns,
		TotalTransactions: len(txns),
		DuplicatesFound:   duplicates,
		DetectedFormat:    string(format),
		DetectedCurrency:  currency,
		DateRange:         dr,
	}, nil
}
