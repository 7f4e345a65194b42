package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kelsos/blend-actions/internal/models"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	addressStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	collateralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	borrowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var columnTitles = []string{"Kind", "Ledger", "Timestamp", "Pool", "Asset", "TVL", "Delta"}

// Addresses returns the keys of result in a stable order
func Addresses(result models.ActionsByAddress) []string {
	addresses := make([]string, 0, len(result))
	for address := range result {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

func actionRow(a models.Action) []string {
	return []string{
		a.Kind.String(),
		strconv.FormatUint(uint64(a.Ledger), 10),
		strconv.FormatUint(a.Timestamp, 10),
		a.Pool,
		a.Asset,
		strconv.FormatInt(a.TVL, 10),
		strconv.FormatInt(a.Delta, 10),
	}
}

// RenderTable renders one table per address, addresses sorted
func RenderTable(result models.ActionsByAddress) string {
	if len(result) == 0 {
		return mutedStyle.Render("No addresses requested") + "\n"
	}

	var s strings.Builder
	for _, address := range Addresses(result) {
		list := result[address]
		s.WriteString(addressStyle.Render(address))
		s.WriteString("\n")

		if len(list) == 0 {
			s.WriteString(mutedStyle.Render("  no actions"))
			s.WriteString("\n\n")
			continue
		}

		rows := make([][]string, 0, len(list))
		for _, a := range list {
			rows = append(rows, actionRow(a))
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(mutedStyle).
			Headers(columnTitles...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle.Padding(0, 1)
				}
				if row >= 0 && row < len(list) && list[row].Kind == models.ActionBorrow {
					return borrowStyle.Padding(0, 1)
				}
				return collateralStyle.Padding(0, 1)
			})

		s.WriteString(t.String())
		s.WriteString("\n\n")
	}

	return s.String()
}
