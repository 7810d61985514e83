// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// maxColumnWidth caps auto-sized columns so one long fully qualified
	// name cannot push the rest of the table off screen.
	maxColumnWidth = 48
	// maxVisibleRows caps the table viewport; longer catalogs scroll.
	maxVisibleRows = 14

	keyCtrlC = "ctrl+c"
)

type (
	// TableColumn represents a column in the table.
	TableColumn struct {
		// Title is the column header text.
		Title string
		// Width is the column width (0 for auto).
		Width int
	}

	// TableOptions configures the Table component.
	TableOptions struct {
		// Title is the title displayed above the table.
		Title string
		// Columns defines the table columns.
		Columns []TableColumn
		// Rows contains the table data.
		Rows [][]string
		// Height limits the visible height (0 for auto).
		Height int
	}

	// tableModel is the bubbletea model for the table component.
	tableModel struct {
		table     table.Model
		rows      [][]string
		title     string
		done      bool
		cancelled bool
	}
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	baseStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// newTableModel builds the bubbles table backing the component.
func newTableModel(opts TableOptions) *tableModel {
	columns := make([]table.Column, len(opts.Columns))
	for i, c := range opts.Columns {
		width := c.Width
		if width == 0 {
			width = autoWidth(c.Title, opts.Rows, i)
		}
		columns[i] = table.Column{Title: c.Title, Width: width}
	}

	rows := make([]table.Row, len(opts.Rows))
	for i, r := range opts.Rows {
		rows[i] = table.Row(r)
	}

	height := opts.Height
	if height == 0 {
		height = len(opts.Rows)
		if height > maxVisibleRows {
			height = maxVisibleRows
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(styles)

	return &tableModel{table: t, rows: opts.Rows, title: opts.Title}
}

func (m *tableModel) Init() tea.Cmd {
	return nil
}

func (m *tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC, "esc", "q":
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *tableModel) View() string {
	if m.done {
		return ""
	}

	view := ""
	if m.title != "" {
		view += titleStyle.Render(m.title) + "\n"
	}
	view += baseStyle.Render(m.table.View()) + "\n"
	view += helpStyle.Render("enter: select • esc: cancel")
	return view
}

// Table displays a selectable table and blocks until the operator picks a
// row or cancels. Returns the selected row index (-1 if cancelled) and the
// selected row values. An empty row set returns immediately as cancelled.
func Table(opts TableOptions) (selectedIdx int, row []string, err error) {
	if len(opts.Rows) == 0 {
		return -1, nil, nil
	}

	model := newTableModel(opts)
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return -1, nil, err
	}

	m := finalModel.(*tableModel)
	if m.cancelled {
		return -1, nil, nil
	}

	selectedIdx = m.table.Cursor()
	if selectedIdx >= 0 && selectedIdx < len(opts.Rows) {
		return selectedIdx, opts.Rows[selectedIdx], nil
	}

	return -1, nil, nil
}

// autoWidth sizes a column to its widest cell, capped at maxColumnWidth.
// Widths are terminal display widths, not byte counts, so non-ASCII
// command and type names line up.
func autoWidth(title string, rows [][]string, col int) int {
	width := lipgloss.Width(title)
	for _, row := range rows {
		if col < len(row) {
			if w := lipgloss.Width(row[col]); w > width {
				width = w
			}
		}
	}
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	return width
}
