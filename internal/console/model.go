// Package console is the interactive operator menu over the inspection
// ledger. It follows the bubbletea model/update/view loop: key presses become
// messages, Update mutates the Model, View renders it.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/eugenenazirov/quality-control/internal/export"
	"github.com/eugenenazirov/quality-control/internal/inspection"
	"github.com/eugenenazirov/quality-control/internal/storage"
)

type screen int

const (
	screenMenu     screen = iota // main menu
	screenRegister               // piece registration form
	screenRemove                 // removal form
	screenView                   // read-only output (lists, boxes, report)
)

type action int

const (
	actionRegister action = iota
	actionList
	actionRemove
	actionBoxes
	actionReport
	actionExport
	actionExit
)

// menuItem implements list.Item for the main menu.
type menuItem struct {
	key    string
	title  string
	desc   string
	action action
}

func (i menuItem) Title() string       { return i.key + ". " + i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

var menuItems = []menuItem{
	{key: "1", title: "Register piece", desc: "Inspect a new piece", action: actionRegister},
	{key: "2", title: "List pieces", desc: "Approved and rejected pieces", action: actionList},
	{key: "3", title: "Remove piece", desc: "Delete a piece by id", action: actionRemove},
	{key: "4", title: "List boxes", desc: "Closed boxes and the open box", action: actionBoxes},
	{key: "5", title: "Report", desc: "Consolidated counts and rejection reasons", action: actionReport},
	{key: "6", title: "Export", desc: "Write the summary and piece sheets", action: actionExport},
	{key: "0", title: "Exit", desc: "Leave the console", action: actionExit},
}

var registerFields = []string{
	"Piece ID",
	"Weight (g, e.g. 100.5)",
	"Color (Blue or Green)",
	"Length (cm, e.g. 15.0)",
}

// Model is the console state.
type Model struct {
	store        storage.Storage
	notices      *Notices
	logger       *zap.Logger
	exportDir    string
	exportFormat export.Format

	screen   screen
	menu     list.Model
	labels   []string
	inputs   []textinput.Model
	focus    int
	title    string
	body     string
	status   string
	failed   bool
	alerts   []string
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger records operator actions.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithExport sets where and how option 6 writes the workbook.
func WithExport(dir string, format export.Format) Option {
	return func(m *Model) {
		m.exportDir = dir
		m.exportFormat = format
	}
}

// New builds the console over store. notices must be the buffer subscribed
// to the store's ledger events; it may be nil.
func New(store storage.Storage, notices *Notices, opts ...Option) *Model {
	items := make([]list.Item, len(menuItems))
	for i, item := range menuItems {
		items[i] = item
	}
	menu := list.New(items, list.NewDefaultDelegate(), 60, 24)
	menu.Title = "PRODUCTION AND QUALITY CONTROL"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	m := &Model{
		store:        store,
		notices:      notices,
		logger:       zap.NewNop(),
		exportDir:    "reports",
		exportFormat: export.FormatCSV,
		menu:         menu,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the interactive program and blocks until the operator exits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menu.SetSize(msg.Width, max(10, msg.Height-6))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenRegister, screenRemove:
			return m.updateForm(msg)
		case screenView:
			switch msg.String() {
			case "esc", "enter", "q", "backspace":
				m.screen = screenMenu
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenMenu:
		m.menu, cmd = m.menu.Update(msg)
	case screenRegister, screenRemove:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" {
		return m.quit()
	}
	if key == "enter" {
		if item, ok := m.menu.SelectedItem().(menuItem); ok {
			return m.choose(item.action)
		}
		return m, nil
	}
	for _, item := range menuItems {
		if item.key == key {
			return m.choose(item.action)
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) choose(a action) (tea.Model, tea.Cmd) {
	m.status, m.failed, m.alerts = "", false, nil

	switch a {
	case actionRegister:
		return m, m.openForm(screenRegister, registerFields)
	case actionRemove:
		return m, m.openForm(screenRemove, []string{"ID of the piece to remove"})
	case actionList:
		m.show("Pieces", renderPieces(m.store.Approved(), m.store.Rejected()))
	case actionBoxes:
		m.show("Boxes", renderBoxes(m.store.ClosedBoxes(), m.store.OpenBox()))
	case actionReport:
		m.show("Consolidated production and quality report", renderReport(m.store.Report()))
	case actionExport:
		m.exportWorkbook()
	case actionExit:
		return m.quit()
	}
	return m, nil
}

func (m *Model) openForm(s screen, labels []string) tea.Cmd {
	m.screen = s
	m.labels = labels
	m.focus = 0
	m.inputs = make([]textinput.Model, len(labels))
	for i, label := range labels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.CharLimit = 64
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return textinput.Blink
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenMenu
		m.setStatus(false, "Cancelled.")
		return m, nil
	case tea.KeyEnter:
		if m.focus < len(m.inputs)-1 {
			m.inputs[m.focus].Blur()
			m.focus++
			m.inputs[m.focus].Focus()
			return m, textinput.Blink
		}
		if m.screen == screenRegister {
			m.submitRegister()
		} else {
			m.submitRemove()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submitRegister() {
	m.screen = screenMenu

	piece, err := inspection.ParseSubmission(inspection.Submission{
		ID:     m.inputs[0].Value(),
		Weight: m.inputs[1].Value(),
		Color:  m.inputs[2].Value(),
		Length: m.inputs[3].Value(),
	})
	if err != nil {
		m.setStatus(true, fmt.Sprintf("Input error: %v. Check the id and the numeric values.", err))
		return
	}

	result := m.store.Inspect(piece)
	m.alerts = m.drainNotices()
	m.logger.Info("piece inspected",
		zap.String("id", result.ID),
		zap.Bool("approved", result.Approved),
		zap.String("reason", result.RejectionReason),
	)

	if !result.Approved && result.RejectionReason == inspection.DuplicateReason {
		m.setStatus(true, fmt.Sprintf("ERROR: piece with ID %q was already inspected. IDs must be unique; the attempt was recorded as rejected.", result.ID))
		return
	}
	m.show("Piece registered", result.String())
}

func (m *Model) submitRemove() {
	m.screen = screenMenu

	id := strings.TrimSpace(m.inputs[0].Value())
	if !m.store.Remove(id) {
		m.setStatus(true, fmt.Sprintf("ERROR: piece with ID %q not found.", id))
		return
	}
	m.alerts = m.drainNotices()
	m.logger.Info("piece removed", zap.String("id", id))
	m.setStatus(false, fmt.Sprintf("SUCCESS: piece with ID %q removed.", id))
}

func (m *Model) exportWorkbook() {
	pieces, report := m.store.Snapshot()
	paths, err := export.WriteDir(m.exportDir, m.exportFormat, export.Build(pieces, report))
	if err != nil {
		m.logger.Error("export failed", zap.Error(err))
		m.setStatus(true, fmt.Sprintf("Export failed: %v", err))
		return
	}
	m.logger.Info("workbook exported", zap.Strings("paths", paths))
	m.setStatus(false, "Exported: "+strings.Join(paths, ", "))
}

func (m *Model) show(title, body string) {
	m.screen = screenView
	m.title = title
	m.body = body
}

func (m *Model) setStatus(failed bool, status string) {
	m.failed = failed
	m.status = status
}

func (m *Model) drainNotices() []string {
	if m.notices == nil {
		return nil
	}
	return m.notices.Drain()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) View() string {
	if m.quitting {
		return "Leaving the quality control console.\n"
	}

	var b strings.Builder
	switch m.screen {
	case screenMenu:
		b.WriteString(m.menu.View())
		b.WriteString(hintStyle.Render("1-6 or enter: choose · 0/q: exit") + "\n")
	case screenRegister, screenRemove:
		title := "Register piece"
		if m.screen == screenRemove {
			title = "Remove piece"
		}
		b.WriteString(titleStyle.Render(title) + "\n")
		for i, in := range m.inputs {
			fmt.Fprintf(&b, "%s: %s\n", m.labels[i], in.View())
		}
		b.WriteString(hintStyle.Render("enter: next · esc: cancel") + "\n")
	case screenView:
		b.WriteString(titleStyle.Render(m.title) + "\n")
		b.WriteString(m.body)
		b.WriteString(hintStyle.Render("enter/esc: back to menu") + "\n")
	}

	for _, alert := range m.alerts {
		b.WriteString(alertStyle.Render(alert) + "\n")
	}
	if m.status != "" {
		style := okStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	return b.String()
}
