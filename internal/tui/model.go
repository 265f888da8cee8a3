// Package tui implements the interactive transaction browser.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Ledger is the part of the ledger the browser reads and mutates.
type Ledger interface {
	ListTransactions(spec filter.Spec) []model.Transaction
	ResolveCategory(id string, t model.CategoryType) model.CategoryRef
	DeleteTransaction(ctx context.Context, id string) error
}

// State represents the current input mode of the TUI.
type State int

const (
	StateList State = iota
	StateSearch
	StateConfirmDelete
)

type statusKind int

const (
	statusNone statusKind = iota
	statusSuccess
	statusError
)

// chromeHeight is the number of lines around the table: title, summary,
// filter line, status bar and help.
const chromeHeight = 8

// Model holds the browser state.
type Model struct {
	ctx          context.Context
	ledger       Ledger
	theme        themes.Theme
	config       Config
	keymap       KeyMap
	help         help.Model
	search       textinput.Model
	table        table.Model
	spec         filter.Spec
	period       filter.Period
	pendingID    string
	status       string
	transactions []model.Transaction
	summary      analysis.Summary
	width        int
	height       int
	state        State
	statusKind   statusKind
	loaded       bool
	quitting     bool
}

// New creates a browser over ledger.
func New(ctx context.Context, ledger Ledger, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "description or amount"
	search.CharLimit = 100

	h := help.New()
	h.ShowAll = false

	m := Model{
		ctx:    contextOrBackground(ctx),
		ledger: ledger,
		theme:  cfg.Theme,
		config: cfg,
		keymap: DefaultKeyMap(),
		help:   h,
		search: search,
		spec:   cfg.Spec,
		period: filter.PeriodAll,
		width:  cfg.Width,
		height: cfg.Height,
		state:  StateList,
	}
	m.table = m.newTable()
	return m
}

func (m Model) newTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(m.theme.Header.GetBorderStyle()).
		BorderForeground(m.theme.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(m.theme.Primary)
	styles.Selected = m.theme.Selected
	t.SetStyles(styles)
	return t
}

func (m Model) columns() []table.Column {
	fixed := 12 + 8 + 16 + 16
	desc := max(12, m.width-fixed-10)
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Category", Width: 16},
		{Title: "Description", Width: desc},
		{Title: "Amount", Width: 16},
	}
}

func (m Model) tableHeight() int {
	return max(3, m.height-chromeHeight)
}

// Init loads the initial view.
func (m Model) Init() tea.Cmd {
	return m.loadTransactions(m.spec)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case transactionsLoadedMsg:
		m.handleLoaded(msg)
		return m, nil

	case transactionDeletedMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Delete failed: "+msg.err.Error())
			return m, nil
		}
		m.setStatus(statusSuccess, "Deleted "+msg.id)
		return m, m.loadTransactions(m.spec)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateSearch:
			return m.updateSearch(msg)
		case StateConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		m.table.MoveUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.table.MoveDown(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.table.MoveUp(m.table.Height())
	case key.Matches(msg, m.keymap.PageDown):
		m.table.MoveDown(m.table.Height())
	case key.Matches(msg, m.keymap.Home):
		m.table.GotoTop()
	case key.Matches(msg, m.keymap.End):
		m.table.GotoBottom()

	case key.Matches(msg, m.keymap.CycleType):
		m.spec.Type = nextType(m.spec.Type)
		return m, m.reload()
	case key.Matches(msg, m.keymap.CyclePeriod):
		m.period = next(filter.Periods, m.period)
		return m, m.reload()
	case key.Matches(msg, m.keymap.CycleSort):
		m.spec.SortBy = next(filter.SortFields, sortField(m.spec.SortBy))
		return m, m.reload()
	case key.Matches(msg, m.keymap.ToggleOrder):
		if m.spec.SortOrder == filter.Asc {
			m.spec.SortOrder = filter.Desc
		} else {
			m.spec.SortOrder = filter.Asc
		}
		return m, m.reload()
	case key.Matches(msg, m.keymap.ClearFilters):
		m.spec = filter.DefaultSpec()
		m.period = filter.PeriodAll
		m.search.SetValue("")
		return m, m.reload()
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keymap.Search):
		m.state = StateSearch
		m.search.SetValue(m.spec.Search)
		return m, m.search.Focus()

	case key.Matches(msg, m.keymap.Delete):
		txn, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.pendingID = txn.ID
		m.state = StateConfirmDelete

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.spec.Search = strings.TrimSpace(m.search.Value())
		m.state = StateList
		m.search.Blur()
		return m, m.reload()
	case tea.KeyEsc:
		m.state = StateList
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		id := m.pendingID
		m.pendingID = ""
		m.state = StateList
		return m, m.deleteTransaction(id)
	case key.Matches(msg, m.keymap.Cancel):
		m.pendingID = ""
		m.state = StateList
	}
	return m, nil
}

// Selected returns the transaction under the cursor.
func (m Model) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.transactions) {
		return model.Transaction{}, false
	}
	return m.transactions[i], true
}

// Spec returns the view currently applied.
func (m Model) Spec() filter.Spec {
	return m.effectiveSpec()
}

// State returns the current input mode.
func (m Model) State() State {
	return m.state
}

// Transactions returns the rows currently shown.
func (m Model) Transactions() []model.Transaction {
	return m.transactions
}

func (m Model) reload() tea.Cmd {
	return m.loadTransactions(m.effectiveSpec())
}

func (m Model) effectiveSpec() filter.Spec {
	if m.period == filter.PeriodAll {
		return m.spec
	}
	return m.spec.WithPeriod(m.period, m.config.Now())
}

func (m *Model) handleLoaded(msg transactionsLoadedMsg) {
	m.transactions = msg.transactions
	m.summary = analysis.Summarize(msg.transactions)
	m.loaded = true

	rows := make([]table.Row, 0, len(msg.transactions))
	for _, txn := range msg.transactions {
		rows = append(rows, m.row(txn))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m Model) row(txn model.Transaction) table.Row {
	ref := m.ledger.ResolveCategory(txn.Category, txn.Type.CategoryType())
	sign := "-"
	if txn.Type == model.TypeIncome {
		sign = "+"
	}
	return table.Row{
		cli.FormatDate(txn.Date),
		string(txn.Type),
		ref.Name,
		txn.Description,
		sign + cli.FormatAmount(txn.Amount),
	}
}

func (m *Model) handleResize() {
	m.table.SetColumns(m.columns())
	m.table.SetHeight(m.tableHeight())
	m.table.SetWidth(m.width)
	m.help.Width = m.width
	m.search.Width = max(10, m.width-4)
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func nextType(current string) string {
	switch current {
	case string(model.TypeIncome):
		return string(model.TypeExpense)
	case string(model.TypeExpense):
		return filter.All
	default:
		return string(model.TypeIncome)
	}
}

func sortField(f filter.SortField) filter.SortField {
	if f == "" {
		return filter.SortDate
	}
	return f
}

// next returns the element after current, wrapping around. An unknown
// current yields the first element.
func next[T comparable](values []T, current T) T {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func (m Model) periodLabel() string {
	switch m.period {
	case filter.PeriodAll:
		return "all time"
	case filter.PeriodYTD:
		return "year to date"
	default:
		return fmt.Sprintf("last %s", m.period)
	}
}
