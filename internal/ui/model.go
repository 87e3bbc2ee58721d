package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nconklindev/er2view/internal/export"
	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/types"
	"github.com/nconklindev/er2view/internal/view"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Title is shown at the top of the screen.
const Title = "Extreme Reactors 2 Data Viewer"

// visibleMods is how many mod names the selection list shows at once.
const visibleMods = 6

type state int

const (
	stateViewing state = iota
	stateExporting
)

type pane int

const (
	paneMods pane = iota
	paneSort
	paneTable
	paneCount
)

type Model struct {
	state        state
	ctrl         *view.Controller
	source       string
	exportPath   string
	focus        pane
	cursor       int
	sortIdx      int
	fields       []string
	table        table.Model
	progress     progress.Model
	progressChan chan float64
	resultChan   chan exportResultMsg
	result       *types.ExportResult
	err          error
	width        int
	height       int
	log          zerolog.Logger
}

type exportResultMsg struct {
	result *types.ExportResult
	err    error
}

type exportCompleteMsg struct {
	result *types.ExportResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

// NewModel builds the terminal viewer over ctrl. source is shown in the
// subtitle; exportPath is where "x" writes the current view.
func NewModel(ctrl *view.Controller, source, exportPath string, log zerolog.Logger) Model {
	columns := make([]table.Column, len(moderator.Columns))
	for i, c := range moderator.Columns {
		columns[i] = table.Column{Title: c.Header, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(20),
	)
	t.SetStyles(TableStyles())

	fields := moderator.Fields()
	m := Model{
		state:      stateViewing,
		ctrl:       ctrl,
		source:     source,
		exportPath: exportPath,
		focus:      paneMods,
		sortIdx:    slices.Index(fields, ctrl.SortField()),
		fields:     fields,
		table:      t,
		progress:   progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
		log:        log.With().Str("component", "tui").Logger(),
	}
	m.refreshRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Subtract space for title, selection panes, status and help
		height := msg.Height - 22
		if height < 5 {
			height = 5 // Minimum height
		}
		m.table.SetHeight(height)
		m.progress.Width = max(msg.Width-10, 10)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateExporting {
			if msg.String() == "ctrl+c" {
				return m.exit()
			}
			return m, nil
		}
		return m.handleKey(msg)

	case exportCompleteMsg:
		m.state = stateViewing
		if msg.err != nil {
			m.err = fmt.Errorf("export failed: %w", msg.err)
			m.log.Error().Err(msg.err).Str("path", m.exportPath).Msg("export failed")
			return m, nil
		}
		m.result = msg.result
		m.log.Info().
			Str("path", msg.result.OutputFile).
			Int("rows", msg.result.RowsExported).
			Msg("view exported")
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateExporting {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m.exit()
	case "tab":
		m.setFocus((m.focus + 1) % paneCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + paneCount - 1) % paneCount)
		return m, nil
	case "u", "enter":
		m.dispatch(view.Update{})
		return m, nil
	case "x":
		return m.startExport()
	}

	switch m.focus {
	case paneMods:
		mods := m.ctrl.Mods()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(mods)-1 {
				m.cursor++
			}
		case " ":
			if m.cursor < len(mods) {
				m.dispatch(view.ToggleMod{Mod: mods[m.cursor]})
			}
		}

	case paneSort:
		switch msg.String() {
		case "left", "h":
			m.selectSort(-1)
		case "right", "l", " ":
			m.selectSort(1)
		}

	case paneTable:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

// selectSort moves through the sort fields. The field cannot be cleared
// once chosen.
func (m *Model) selectSort(step int) {
	n := len(m.fields)
	idx := m.sortIdx
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = n - 1
	default:
		idx = (idx + step + n) % n
	}
	if m.dispatch(view.SelectSort{Field: m.fields[idx]}) {
		m.sortIdx = idx
	}
}

// dispatch feeds ev to the controller and redraws the table. It reports
// whether the event was accepted.
func (m *Model) dispatch(ev view.Event) bool {
	if err := m.ctrl.Handle(ev); err != nil {
		m.err = err
		return false
	}
	m.err = nil
	m.refreshRows()
	return true
}

func (m *Model) refreshRows() {
	records := m.ctrl.Rows()
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row(r.Cells())
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) exit() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Handle(view.Exit{}); err != nil {
		m.log.Warn().Err(err).Msg("exit")
	}
	return m, tea.Quit
}

func (m Model) startExport() (Model, tea.Cmd) {
	m.state = stateExporting
	m.result = nil
	m.err = nil
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan exportResultMsg, 1)

	// Capture channels and rows for the goroutine
	progressChan := m.progressChan
	resultChan := m.resultChan
	rows := slices.Clone(m.ctrl.Rows())
	path := m.exportPath

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := export.Write(path, rows, progressChan)

				// Send result
				resultChan <- exportResultMsg{result: result, err: err}

				// Close channels
				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		m.progress.SetPercent(0),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan exportResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return exportCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(Title))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Reactor Moderator Data Viewer • %s • %d of %d moderators",
		filepath.Base(m.source), len(m.ctrl.Rows()), len(m.ctrl.Records()))))
	s.WriteString("\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.viewMods(), " ", m.viewSort()))
	s.WriteString("\n")
	s.WriteString(m.box(paneTable).Render(m.table.View()))
	s.WriteString("\n")
	s.WriteString(m.viewStatus())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("tab: switch pane • ↑/↓: move • space: toggle mod • ←/→: sort by • u/enter: update • x: export • q: exit"))

	return s.String()
}

func (m Model) box(p pane) lipgloss.Style {
	if m.focus == p {
		return FocusedBoxStyle
	}
	return BoxStyle
}

func (m Model) viewMods() string {
	var s strings.Builder
	s.WriteString(LabelStyle.Render("Select Mods:"))

	mods := m.ctrl.Mods()
	offset := 0
	if m.cursor >= visibleMods {
		offset = m.cursor - visibleMods + 1
	}
	end := min(offset+visibleMods, len(mods))

	for i := offset; i < end; i++ {
		cursor := " "
		if m.focus == paneMods && m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if m.ctrl.Selected(mods[i]) {
			checked = "✓"
		}

		line := fmt.Sprintf("%s [%s] %s", cursor, checked, mods[i])
		switch {
		case m.focus == paneMods && m.cursor == i:
			line = SelectedStyle.Render(line)
		case m.ctrl.Selected(mods[i]):
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}

		s.WriteString("\n")
		s.WriteString(line)
	}

	if len(mods) > visibleMods {
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %d-%d of %d", offset+1, end, len(mods))))
	}

	return m.box(paneMods).Width(36).Render(s.String())
}

func (m Model) viewSort() string {
	var s strings.Builder
	s.WriteString(LabelStyle.Render("Sort by:"))
	s.WriteString("\n")

	field := "(none)"
	if m.sortIdx >= 0 {
		field = m.fields[m.sortIdx]
	}
	line := fmt.Sprintf("‹ %s ›", field)
	if m.focus == paneSort {
		line = SelectedStyle.Render(line)
	}
	s.WriteString(line)

	if m.sortIdx >= 0 {
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render("descending"))
	}

	applied := m.ctrl.AppliedMods()
	s.WriteString("\n")
	if len(applied) == 0 {
		s.WriteString(SubtitleStyle.Render("showing all mods"))
	} else {
		s.WriteString(SubtitleStyle.Render("showing: " + strings.Join(applied, ", ")))
	}

	return m.box(paneSort).Width(30).Render(s.String())
}

func (m Model) viewStatus() string {
	switch {
	case m.state == stateExporting:
		return fmt.Sprintf("Exporting to %s\n%s", m.exportPath, m.progress.View())
	case m.err != nil:
		return ErrorStyle.Render("✗ " + m.err.Error())
	case m.result != nil:
		return SuccessStyle.Render(fmt.Sprintf("✓ Exported %d rows to %s", m.result.RowsExported, m.result.OutputFile))
	}
	return ""
}
