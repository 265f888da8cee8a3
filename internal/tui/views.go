package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return m.theme.Subtitle.Render("Loading transactions...")
	}

	sections := []string{
		m.renderHeader(),
		m.renderSummary(),
		m.renderFilters(),
		m.renderTable(),
		m.renderStatusBar(),
	}
	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Pocketbook")
	period := m.theme.Subtitle.Render(" · " + m.periodLabel())
	return title + period
}

func (m Model) renderSummary() string {
	s := m.summary
	balance := m.theme.Income
	if s.Balance < 0 {
		balance = m.theme.Expense
	}
	parts := []string{
		"Income " + m.theme.Income.Render(cli.FormatAmount(s.Income)),
		"Expenses " + m.theme.Expense.Render(cli.FormatAmount(s.Expenses)),
		"Balance " + balance.Render(cli.FormatAmount(s.Balance)),
		"Savings " + cli.FormatPercent(s.SavingsRate),
	}
	return m.theme.Normal.Render(strings.Join(parts, "   "))
}

func (m Model) renderFilters() string {
	if m.state == StateSearch {
		return m.search.View()
	}

	spec := m.effectiveSpec()
	sortBy := sortField(spec.SortBy)
	order := spec.SortOrder
	if order == "" {
		order = "desc"
	}
	sorting := fmt.Sprintf("Sort: %s %s", sortBy, order)

	active := spec.Describe(resolverFunc(m.ledger.ResolveCategory))
	if len(active) == 0 {
		return m.theme.Subtitle.Render("No filters · " + sorting)
	}
	return m.theme.Subtitle.Render(strings.Join(active, " · ") + " · " + sorting)
}

func (m Model) renderTable() string {
	if len(m.transactions) == 0 {
		msg := "No transactions yet. Add one with `pocketbook add`."
		if m.effectiveSpec().HasActive() {
			msg = "No transactions match the current filters. Press c to clear them."
		}
		return m.theme.Box.Render(m.theme.Subtitle.Render(msg))
	}
	return m.table.View()
}

func (m Model) renderStatusBar() string {
	if m.state == StateConfirmDelete {
		return m.theme.StatusWarning.Render(fmt.Sprintf("Delete %s? (y/n)", m.pendingID))
	}

	switch m.statusKind {
	case statusSuccess:
		return m.theme.StatusSuccess.Render(m.status)
	case statusError:
		return m.theme.StatusError.Render(m.status)
	}

	count := fmt.Sprintf("%s transactions", cli.FormatCount(len(m.transactions)))
	if len(m.transactions) > 0 {
		count = fmt.Sprintf("%d/%s", m.table.Cursor()+1, count)
	}
	return m.theme.Subtitle.Render(count)
}

// resolverFunc adapts a resolve function to service.CategoryResolver.
type resolverFunc func(id string, t model.CategoryType) model.CategoryRef

func (f resolverFunc) Resolve(id string, t model.CategoryType) model.CategoryRef {
	return f(id, t)
}

var _ service.CategoryResolver = resolverFunc(nil)
