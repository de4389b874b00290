package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// operationTimeout bounds how long a screen waits for the server.
const operationTimeout = 30 * time.Second

// HivesState represents the current state of the hives screen
type HivesState int

const (
	HivesStateLoading HivesState = iota
	HivesStateReady
	HivesStateError
	HivesStateDeleteConfirm
)

// Hive screen messages
type (
	// HivesLoadedMsg is sent when the collection was fetched
	HivesLoadedMsg struct{}

	// HivesErrorMsg is sent when fetching fails
	HivesErrorMsg struct {
		Err error
	}

	// HiveSavedMsg is sent when a save completed
	HiveSavedMsg struct {
		Hive models.Hive
	}

	// HiveSaveFailedMsg is sent when a save or delete was rejected
	HiveSaveFailedMsg struct {
		Hive models.Hive
		Err  error
	}

	// HiveDeletedMsg is sent when a hive was removed
	HiveDeletedMsg struct {
		Hive models.Hive
	}

	// HivesChangedMsg asks the screen to re-read the collection
	HivesChangedMsg struct{}

	// RemainingChangedMsg is sent when a store change altered the
	// remaining count
	RemainingChangedMsg struct {
		Remaining  int
		Inflection string
	}
)

// HivesModel is the model for the hive list screen
type HivesModel struct {
	ctrl    *controller.HivesController
	hives   []models.Hive
	table   table.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    common.ListKeyMap
	changes chan RemainingChangedMsg

	state        HivesState
	err          error
	saveErr      error
	inputFocused bool
	deleteHive   *models.Hive
	width        int
	height       int
}

// NewHivesModel creates a new hive list model
func NewHivesModel(ctrl *controller.HivesController) HivesModel {
	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Name", Width: 24},
		{Title: "Description", Width: 36},
		{Title: "State", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(common.ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(common.ColorSecondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1a1a1a")).
		Background(common.ColorPrimary).
		Bold(true)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	in := textinput.New()
	in.Placeholder = "What needs a hive?"
	in.CharLimit = 128
	in.Width = 48
	in.PromptStyle = lipgloss.NewStyle().Foreground(common.ColorSecondary)
	in.Focus()

	m := HivesModel{
		ctrl:         ctrl,
		table:        t,
		input:        in,
		spinner:      sp,
		help:         help.New(),
		keys:         common.DefaultListKeyMap(),
		changes:      make(chan RemainingChangedMsg, 1),
		state:        HivesStateLoading,
		inputFocused: true,
	}
	if ctrl != nil {
		m.input.SetValue(ctrl.NewName())
	}
	return m
}

// Init initializes the hive list model
func (m HivesModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.loadHives(),
		waitForChange(m.changes),
	)
}

// Watch forwards remaining count changes of the collection to the screen
// until stop is called. Only the newest undelivered change is kept.
func (m HivesModel) Watch() (stop func()) {
	if m.ctrl == nil {
		return func() {}
	}
	changes := m.changes
	return m.ctrl.Watch(func(remaining int, inflection string) {
		msg := RemainingChangedMsg{Remaining: remaining, Inflection: inflection}
		select {
		case changes <- msg:
			return
		default:
		}
		// replace the stale pending change
		select {
		case <-changes:
		default:
		}
		select {
		case changes <- msg:
		default:
		}
	})
}

// Update handles messages for the hive list screen
func (m HivesModel) Update(msg tea.Msg) (HivesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(m.height-16, 3))
		m.updateColumns()
		return m, nil

	case tea.KeyMsg:
		if m.state == HivesStateDeleteConfirm {
			return m.updateDeleteConfirm(msg)
		}
		if m.inputFocused {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)

	case HivesLoadedMsg:
		m.state = HivesStateReady
		m.err = nil
		m.refresh()
		return m, nil

	case HivesErrorMsg:
		m.state = HivesStateError
		m.err = msg.Err
		return m, nil

	case HiveSavedMsg:
		m.saveErr = nil
		m.refresh()
		return m, nil

	case HiveSaveFailedMsg:
		m.saveErr = msg.Err
		m.refresh()
		return m, nil

	case HiveDeletedMsg, HivesChangedMsg:
		m.refresh()
		return m, nil

	case RemainingChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		if m.state == HivesStateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.inputFocused {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m HivesModel) updateInput(msg tea.KeyMsg) (HivesModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.ctrl == nil {
			return m, nil
		}
		m.ctrl.SetNewName(m.input.Value())
		fut := m.ctrl.CreateHive(context.Background())
		if fut == nil {
			// blank input, nothing happens
			return m, nil
		}
		m.input.SetValue(m.ctrl.NewName())
		m.saveErr = nil
		m.refresh()
		m.table.GotoBottom()
		return m, waitForSave(fut)

	case tea.KeyTab, tea.KeyEsc:
		m.setInputFocus(false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.ctrl != nil {
		m.ctrl.SetNewName(m.input.Value())
	}
	return m, cmd
}

func (m HivesModel) updateTable(msg tea.KeyMsg) (HivesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		m.setInputFocus(true)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		if m.state == HivesStateReady || m.state == HivesStateError {
			m.state = HivesStateLoading
			return m, tea.Batch(m.spinner.Tick, m.loadHives())
		}
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		return m, func() tea.Msg {
			return NavigateMsg{Screen: "settings"}
		}

	case key.Matches(msg, m.keys.Toggle):
		hive := m.SelectedHive()
		if hive == nil || m.ctrl == nil {
			return m, nil
		}
		fut, err := m.ctrl.ToggleCompleted(context.Background(), hive.ClientID)
		if err != nil {
			m.saveErr = err
			return m, nil
		}
		m.refresh()
		return m, waitForSave(fut)

	case key.Matches(msg, m.keys.Edit):
		hive := m.SelectedHive()
		if hive == nil {
			return m, nil
		}
		clientID := hive.ClientID
		return m, func() tea.Msg {
			return NavigateMsg{Screen: "detail", Data: clientID}
		}

	case key.Matches(msg, m.keys.Delete):
		if hive := m.SelectedHive(); hive != nil {
			m.deleteHive = hive
			m.state = HivesStateDeleteConfirm
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.setInputFocus(true)
		return m, textinput.Blink
	}

	if m.state == HivesStateReady {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m HivesModel) updateDeleteConfirm(msg tea.KeyMsg) (HivesModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		hive := m.deleteHive
		m.deleteHive = nil
		m.state = HivesStateReady
		if hive == nil || m.ctrl == nil {
			return m, nil
		}
		return m, waitForDelete(m.ctrl.Delete(context.Background(), hive.ClientID))
	case "n", "N", "esc":
		m.deleteHive = nil
		m.state = HivesStateReady
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *HivesModel) setInputFocus(focused bool) {
	m.inputFocused = focused
	if focused {
		m.input.Focus()
		m.table.Blur()
	} else {
		m.input.Blur()
		m.table.Focus()
	}
}

// refresh copies the controller's collection into the table
func (m *HivesModel) refresh() {
	if m.ctrl == nil {
		return
	}
	m.hives = m.ctrl.Hives()
	m.updateRows()
}

func (m *HivesModel) updateColumns() {
	nameWidth, descWidth := m.calculateColumnWidths()
	m.table.SetColumns([]table.Column{
		{Title: " ", Width: 3},
		{Title: "Name", Width: nameWidth},
		{Title: "Description", Width: descWidth},
		{Title: "State", Width: 12},
	})
	m.updateRows()
}

// calculateColumnWidths splits the free width between name and description
func (m *HivesModel) calculateColumnWidths() (nameWidth, descWidth int) {
	available := m.width - 3 - 12 - 12
	if available < 60 {
		return 24, 36
	}
	nameWidth = available * 40 / 100
	return nameWidth, available - nameWidth
}

func (m *HivesModel) updateRows() {
	nameWidth, descWidth := m.calculateColumnWidths()

	rows := make([]table.Row, len(m.hives))
	for i, h := range m.hives {
		rows[i] = table.Row{
			common.StatusBox(h.IsCompleted),
			truncate(h.Name, nameWidth),
			truncate(h.Description, descWidth),
			common.StateLabel(h.State),
		}
	}
	m.table.SetRows(rows)
}

// View renders the hive list screen
func (m HivesModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Hives"))
	content.WriteString("\n")

	inputStyle := common.InputStyle
	if m.inputFocused {
		inputStyle = common.FocusedInputStyle
	}
	content.WriteString(inputStyle.Render(m.input.View()))
	content.WriteString("\n\n")

	switch m.state {
	case HivesStateLoading:
		content.WriteString(fmt.Sprintf("%s Loading hives...", m.spinner.View()))

	case HivesStateError:
		content.WriteString(common.ErrorTextStyle.Render("Error: " + m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString(common.MutedTextStyle.Render("Press 'r' to retry"))

	case HivesStateDeleteConfirm:
		content.WriteString(common.ErrorTextStyle.Render("⚠ Delete Hive"))
		content.WriteString("\n\n")
		content.WriteString(fmt.Sprintf("Delete %q? ", m.deleteHive.Name))
		content.WriteString(common.FormatHelp("y", "confirm") + "  " + common.FormatHelp("n", "cancel"))

	case HivesStateReady:
		if len(m.hives) == 0 {
			content.WriteString(common.MutedTextStyle.Render("No hives yet. Type a name above and press enter."))
		} else {
			content.WriteString(m.table.View())
		}
	}

	if m.saveErr != nil {
		content.WriteString("\n\n")
		content.WriteString(common.ErrorTextStyle.Render("Save failed: " + m.saveErr.Error()))
	}

	content.WriteString("\n\n")
	content.WriteString(common.StatusBarStyle.Render(m.Footer()))

	content.WriteString("\n\n")
	if m.inputFocused {
		content.WriteString(strings.Join([]string{
			common.FormatHelp("enter", "create"),
			common.FormatHelp("tab", "list"),
			common.FormatHelp("ctrl+c", "quit"),
		}, "  "))
	} else {
		content.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	style := lipgloss.NewStyle().
		Width(m.width).
		Padding(1, 2)

	return style.Render(content.String())
}

// Footer returns the remaining count line, e.g. "1 item left".
func (m HivesModel) Footer() string {
	remaining := controller.Remaining(m.hives)
	return fmt.Sprintf("%d %s left", remaining, controller.Inflection(remaining))
}

// SelectedHive returns the hive under the table cursor, if any
func (m HivesModel) SelectedHive() *models.Hive {
	if m.state != HivesStateReady || len(m.hives) == 0 {
		return nil
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.hives) {
		return nil
	}
	hive := m.hives[i]
	return &hive
}

func (m HivesModel) loadHives() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if ctrl == nil {
			return HivesErrorMsg{Err: fmt.Errorf("no hive controller")}
		}

		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		if err := ctrl.Refresh(ctx); err != nil {
			return HivesErrorMsg{Err: err}
		}
		return HivesLoadedMsg{}
	}
}

// waitForChange delivers the next remaining count change
func waitForChange(changes <-chan RemainingChangedMsg) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		return <-changes
	}
}

// waitForSave turns a pending save into a screen message
func waitForSave(fut *store.Future) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		hive, err := fut.Wait(ctx)
		if err != nil {
			return HiveSaveFailedMsg{Hive: hive, Err: err}
		}
		return HiveSavedMsg{Hive: hive}
	}
}

func waitForDelete(fut *store.Future) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		hive, err := fut.Wait(ctx)
		if err != nil {
			return HiveSaveFailedMsg{Hive: hive, Err: fmt.Errorf("delete %s: %w", hive.Name, err)}
		}
		return HiveDeletedMsg{Hive: hive}
	}
}

// truncate shortens a string to maxLen cells, adding "..." if needed
func truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}
