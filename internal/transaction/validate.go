package transaction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
)

// Validate checks every field of input and returns the draft transaction it
// describes. All failing fields are reported together.
func Validate(input model.TransactionInput) (model.Transaction, error) {
	verr := common.NewValidationError()

	draft := model.Transaction{
		Type:        input.Type,
		Category:    strings.TrimSpace(input.Category),
		Description: describe(input.Description),
	}
	checkType(verr, input.Type)
	draft.Amount = checkAmount(verr, input.Amount)
	draft.Date = checkDate(verr, input.Date)
	checkCategory(verr, draft.Category)

	if err := verr.OrNil(); err != nil {
		return model.Transaction{}, err
	}
	return draft, nil
}

// applyPatch validates only the fields present in patch and applies them to
// a copy of txn.
func applyPatch(txn model.Transaction, patch model.TransactionPatch) (model.Transaction, error) {
	verr := common.NewValidationError()

	if patch.Type != nil {
		checkType(verr, *patch.Type)
		txn.Type = *patch.Type
	}
	if patch.Amount != nil {
		txn.Amount = checkAmount(verr, *patch.Amount)
	}
	if patch.Date != nil {
		txn.Date = checkDate(verr, *patch.Date)
	}
	if patch.Category != nil {
		txn.Category = strings.TrimSpace(*patch.Category)
		checkCategory(verr, txn.Category)
	}
	if patch.Description != nil {
		txn.Description = describe(*patch.Description)
	}

	if err := verr.OrNil(); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// checkRecord validates the fields of a complete record, as found in imports.
// Ids are checked by the caller.
func checkRecord(txn model.Transaction) *common.ValidationError {
	verr := common.NewValidationError()
	checkType(verr, txn.Type)
	checkAmount(verr, float64(txn.Amount))
	if txn.Date.IsZero() {
		verr.Add("date", "Date is required")
	}
	checkCategory(verr, txn.Category)
	return verr
}

// CheckSlot validates an encoded transactions slot, as found in backups.
// Every record must be valid and carry a unique id. The returned slot has
// blank descriptions replaced by the default.
func CheckSlot(raw json.RawMessage) (json.RawMessage, error) {
	var records []model.Transaction
	if err := json.Unmarshal(raw, &records); err != nil {
		verr := common.NewValidationError()
		verr.Add("transactions", "Transactions must be a list of valid records")
		return nil, verr
	}

	verr := common.NewValidationError()
	seen := make(map[string]bool, len(records))
	for i := range records {
		prefix := fmt.Sprintf("[%d].", i)
		switch id := records[i].ID; {
		case strings.TrimSpace(id) == "":
			verr.Add(prefix+"id", "Transaction id is required")
		case seen[id]:
			verr.Add(prefix+"id", "Transaction id is duplicated")
		}
		seen[records[i].ID] = true

		verr.Merge(prefix, checkRecord(records[i]))
		records[i].Description = describe(records[i].Description)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transactions: %w", err)
	}
	return out, nil
}

func checkType(verr *common.ValidationError, t model.TransactionType) {
	if !t.Valid() {
		verr.Add("type", "Type must be income or expense")
	}
}

func checkAmount(verr *common.ValidationError, amount float64) int64 {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		verr.Add("amount", "Amount must be a number")
	case amount != math.Trunc(amount):
		verr.Add("amount", "Amount must be a whole number")
	case amount < float64(model.MinAmount):
		verr.Add("amount", fmt.Sprintf("Amount must be at least %d", model.MinAmount))
	case amount > float64(model.MaxAmount):
		verr.Add("amount", fmt.Sprintf("Amount must not exceed %d", model.MaxAmount))
	default:
		return int64(amount)
	}
	return 0
}

func checkDate(verr *common.ValidationError, raw string) model.Date {
	if strings.TrimSpace(raw) == "" {
		verr.Add("date", "Date is required")
		return model.Date{}
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		verr.Add("date", "Date must be a valid YYYY-MM-DD date")
		return model.Date{}
	}
	return d
}

func checkCategory(verr *common.ValidationError, category string) {
	if category == "" {
		verr.Add("category", "Category is required")
	}
}

func describe(description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return model.DefaultDescription
}
