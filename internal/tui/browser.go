package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/blend-actions/internal/models"
)

// ResolveFunc fetches the actions shown by the browser
type ResolveFunc func() (models.ActionsByAddress, error)

// ResolvedMsg carries the result of a ResolveFunc
type ResolvedMsg struct {
	Result models.ActionsByAddress
	Err    error
}

// Model is an interactive per-address action browser
type Model struct {
	resolve   ResolveFunc
	spinner   spinner.Model
	table     table.Model
	result    models.ActionsByAddress
	addresses []string
	current   int
	loading   bool
	err       error
	width     int
	height    int
	quit      bool
}

func NewModel(resolve ResolveFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := make([]table.Column, 0, len(columnTitles))
	for _, title := range columnTitles {
		columns = append(columns, table.Column{Title: title, Width: columnWidth(title)})
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return Model{
		resolve: resolve,
		spinner: sp,
		table:   tbl,
		loading: true,
		width:   80,
		height:  24,
	}
}

func columnWidth(title string) int {
	switch title {
	case "Kind", "Ledger", "Asset":
		return 10
	case "Pool":
		return 16
	default:
		return 14
	}
}

func (m Model) resolveCmd() tea.Msg {
	result, err := m.resolve()
	return ResolvedMsg{Result: result, Err: err}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.resolveCmd)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil

	case ResolvedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.addresses = Addresses(msg.Result)
		m.current = 0
		m.refreshRows()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	case "tab", "right", "l":
		if len(m.addresses) > 0 {
			m.current = (m.current + 1) % len(m.addresses)
			m.refreshRows()
		}
		return m, nil
	case "shift+tab", "left", "h":
		if len(m.addresses) > 0 {
			m.current = (m.current - 1 + len(m.addresses)) % len(m.addresses)
			m.refreshRows()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) refreshRows() {
	var rows []table.Row
	if len(m.addresses) > 0 {
		for _, a := range m.result[m.addresses[m.current]] {
			rows = append(rows, table.Row(actionRow(a)))
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.GotoTop()
	}
}

// CurrentAddress returns the address whose actions are shown, "" before loading
func (m Model) CurrentAddress() string {
	if len(m.addresses) == 0 {
		return ""
	}
	return m.addresses[m.current]
}

func (m Model) View() string {
	if m.quit {
		return ""
	}

	var s strings.Builder
	s.WriteString(headerStyle.MarginBottom(1).Render("Lending Actions"))
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(fmt.Sprintf("%s Resolving actions...\n", m.spinner.View()))
	case m.err != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	case len(m.addresses) == 0:
		s.WriteString(mutedStyle.Render("No addresses requested"))
		s.WriteString("\n")
	default:
		list := m.result[m.CurrentAddress()]
		collaterals, borrows := 0, 0
		for _, a := range list {
			if a.Kind == models.ActionBorrow {
				borrows++
			} else {
				collaterals++
			}
		}

		s.WriteString(fmt.Sprintf("%s  %s\n",
			addressStyle.Render(truncate(m.CurrentAddress(), 56)),
			mutedStyle.Render(fmt.Sprintf("(%d/%d)", m.current+1, len(m.addresses)))))
		s.WriteString(mutedStyle.Render(fmt.Sprintf("Collateral: %d | Borrow: %d", collaterals, borrows)))
		s.WriteString("\n\n")
		s.WriteString(m.table.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("tab/shift+tab: switch address | ↑/↓: scroll | q: quit"))
	return s.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Run starts the browser and blocks until the user quits
func Run(resolve ResolveFunc) error {
	program := tea.NewProgram(NewModel(resolve), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
