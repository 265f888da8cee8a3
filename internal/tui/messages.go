package tui

import "github.com/Veraticus/pocketbook/internal/model"

// transactionsLoadedMsg carries a fresh filtered view.
type transactionsLoadedMsg struct {
	transactions []model.Transaction
}

// transactionDeletedMsg reports the outcome of a delete.
type transactionDeletedMsg struct {
	err error
	id  string
}
