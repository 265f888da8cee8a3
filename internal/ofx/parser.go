// Package ofx reads OFX/QFX bank and credit card statements into ledger
// transaction drafts.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line converted to whole currency units.
type Entry struct {
	Date        model.Date
	FITID       string
	AccountID   string
	Description string
	TrnType     string
	Type        model.TransactionType
	Amount      int64
}

// ID is the ledger transaction id for the entry. It is stable across
// re-imports of the same statement.
func (e Entry) ID() string {
	return fmt.Sprintf("ofx-%s-%s", e.AccountID, e.FITID)
}

// Categories chooses the category each direction of money is filed under.
type Categories struct {
	Income  string
	Expense string
}

// Transaction converts the entry into a ledger record stamped with now.
func (e Entry) Transaction(categories Categories, now time.Time) model.Transaction {
	category := categories.Expense
	if e.Type == model.TypeIncome {
		category = categories.Income
	}
	return model.Transaction{
		ID:          e.ID(),
		Type:        e.Type,
		Amount:      e.Amount,
		Category:    category,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values are rejected by ofxgo.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into entries, in statement order.
// Lines that round to less than one whole unit are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string) []Entry {
	if list == nil {
		return nil
	}

	entries := make([]Entry, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		entry, ok := p.convertTransaction(ofxTx, accountID)
		if !ok {
			slog.Warn("Skipping OFX transaction below one whole unit",
				"fitid", ofxTx.FiTID,
				"amount", ofxTx.TrnAmt.String())
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// convertTransaction maps an OFX line to an entry. Credits become income and
// debits expenses; the amount is rounded half away from zero to whole units.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (Entry, bool) {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	txType := model.TypeIncome
	if amount.IsNegative() {
		txType = model.TypeExpense
	}

	whole := amount.Abs().Round(0).IntPart()
	if whole < model.MinAmount || whole > model.MaxAmount {
		return Entry{}, false
	}

	return Entry{
		FITID:       string(ofxTx.FiTID),
		AccountID:   accountID,
		Date:        model.DateOf(ofxTx.DtPosted.Time),
		Description: p.extractMerchantName(ofxTx),
		TrnType:     ofxTx.TrnType.String(),
		Type:        txType,
		Amount:      whole,
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts the sorted unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accountMap[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accountMap[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
