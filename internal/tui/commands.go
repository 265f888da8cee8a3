package tui

import (
	"context"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/filter"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) loadTransactions(spec filter.Spec) tea.Cmd {
	ledger := m.ledger
	return func() tea.Msg {
		return transactionsLoadedMsg{transactions: ledger.ListTransactions(spec)}
	}
}

func (m Model) deleteTransaction(id string) tea.Cmd {
	ledger := m.ledger
	ctx := m.ctx
	return func() tea.Msg {
		err := ledger.DeleteTransaction(ctx, id)
		if common.IsSoft(err) {
			err = nil
		}
		return transactionDeletedMsg{id: id, err: err}
	}
}

// contextOrBackground keeps commands usable when no context was supplied.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
