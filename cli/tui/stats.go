package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/amlctl/journal"
)

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	commands table.Model
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	m := StatsModel{viewType: viewType, data: data}
	if s, ok := summaryOf(data); ok {
		m.commands = commandTable(s.Commands, maxTableRows)
	}
	return m
}

// maxTableRows caps the interactive table; the rest scrolls.
const maxTableRows = 12

func summaryOf(data any) (*journal.Summary, bool) {
	switch s := data.(type) {
	case *journal.Summary:
		return s, s != nil
	case journal.Summary:
		return &s, true
	}
	return nil, false
}

// commandTable builds the per-command table showing up to maxRows rows
// (all when maxRows is 0).
func commandTable(stats []journal.CommandStats, maxRows int) table.Model {
	cols := []table.Column{
		{Title: "Command", Width: 16},
		{Title: "Count", Width: 8},
		{Title: "Failures", Width: 9},
		{Title: "Mean ms", Width: 9},
		{Title: "Max ms", Width: 9},
	}
	rows := make([]table.Row, 0, len(stats))
	for _, cs := range stats {
		rows = append(rows, table.Row{
			cs.Command,
			strconv.Itoa(cs.Count),
			strconv.Itoa(cs.Failures),
			strconv.FormatInt(cs.MeanMs, 10),
			strconv.FormatInt(cs.MaxMs, 10),
		})
	}

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(primaryColor)

	visible := max(len(rows), 1)
	if maxRows > 0 {
		visible = min(visible, maxRows)
	}
	// The table height counts the header block as well as the rows.
	headerHeight := lipgloss.Height(st.Header.Render(cols[0].Title))

	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithStyles(st),
		table.WithHeight(visible+headerHeight),
	)
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.commands, cmd = m.commands.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewJournalStats:
		content = m.renderJournalStats()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("↑/↓ scroll • q quit")
	return content + "\n" + help
}

func (m StatsModel) renderJournalStats() string {
	s, ok := summaryOf(m.data)
	if !ok {
		return "Invalid data type for stats_journal"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Command Journal"))
	b.WriteString("\n")

	boxes := []string{
		renderStatBox("Total", s.Total, highlightColor),
		renderStatBox("Succeeded", s.Total-s.Failures, successColor),
		renderStatBox("Failed", s.Failures, errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	if !s.First.IsZero() {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("First:"),
			ValueStyle.Render(s.First.Format("2006-01-02 15:04:05"))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Last:"),
			ValueStyle.Render(s.Last.Format("2006-01-02 15:04:05"))))
	}

	if len(s.ByOutcome) > 0 {
		b.WriteString("\n")
		outcomes := make([]string, 0, len(s.ByOutcome))
		for o := range s.ByOutcome {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render(o+":"),
				OutcomeStyle(o).Render(strconv.Itoa(s.ByOutcome[o]))))
		}
	}

	if len(s.Commands) > 0 {
		b.WriteString("\n")
		b.WriteString(m.commands.View())
	}
	return b.String()
}

func renderStatBox(label string, value int, color lipgloss.Color) string {
	valueStr := StatValueStyle.Foreground(color).Render(strconv.Itoa(value))
	labelStr := StatLabelStyle.Render(label)
	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)
	return StatBoxStyle.BorderForeground(color).Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	p := tea.NewProgram(NewStatsModel(viewType, data), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders a stats view without starting a program.
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	if s, ok := summaryOf(data); ok {
		model.commands = commandTable(s.Commands, 0)
	}
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
