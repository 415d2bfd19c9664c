package preview

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/mjholloway/coinsort/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files:
// leading whitespace before the header, mixed-case SEVERITY values, and
// SGML-style tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

func parseOFX(r io.Reader, accountID string) ([]model.CandidateTransaction, string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read OFX statement: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse OFX statement: %w", err)
	}

	var txns []model.CandidateTransaction
	currency := ""

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if ok && stmt.BankTranList != nil {
			if currency == "" {
				currency = stmt.CurDef.String()
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txns = append(txns, convertOFXTransaction(ofxTx, accountID))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if ok && stmt.BankTranList != nil {
			if currency == "" {
				currency = stmt.CurDef.String()
			}
			for _, ofxTx := range stmt.BankTranList.Transactions {
				txns = append(txns, convertOFXTransaction(ofxTx, accountID))
			}
		}
	}

	return txns, currency, nil
}

func convertOFXTransaction(ofxTx ofxgo.Transaction, accountID string) model.CandidateTransaction {
	// OFX uses negative amounts for debits.
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
	txType := model.TypeIncome
	if amount.IsNegative() {
		txType = model.TypeExpense
		amount = amount.Abs()
	}

	description := extractOFXDescription(ofxTx)
	date := ofxTx.DtPosted.Time

	return model.CandidateTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
		Hash:        Fingerprint(accountID, date, amount, description),
	}
}

// extractOFXDescription prefers the payee name when present, falling back to
// the NAME field and then the MEMO.
func extractOFXDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
