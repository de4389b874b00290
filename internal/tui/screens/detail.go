package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DetailState represents the current state of the detail screen
type DetailState int

const (
	DetailStateEditing DetailState = iota
	DetailStateSaving
	DetailStateError
	DetailStateNotFound
)

const (
	fieldName = iota
	fieldImage
	fieldDescription
	fieldSubmit
	fieldCount
)

// DetailSavedMsg is sent when the edited hive was saved
type DetailSavedMsg struct {
	Hive models.Hive
}

// DetailErrorMsg is sent when saving the edited hive failed
type DetailErrorMsg struct {
	Err error
}

// DetailModel edits the name, image and description of one hive
type DetailModel struct {
	ctrl     *controller.HivesController
	clientID string
	hive     models.Hive

	inputs  []textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    common.FormKeyMap

	focusIndex int
	state      DetailState
	err        error

	width  int
	height int
}

// NewDetailModel creates a form for the hive with the given client id
func NewDetailModel(ctrl *controller.HivesController, clientID string) DetailModel {
	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 128
	name.Width = 50

	image := textinput.New()
	image.Placeholder = "image.png"
	image.CharLimit = 256
	image.Width = 50

	desc := textinput.New()
	desc.Placeholder = "what this hive does"
	desc.CharLimit = 512
	desc.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	m := DetailModel{
		ctrl:     ctrl,
		clientID: clientID,
		inputs:   []textinput.Model{name, image, desc},
		spinner:  sp,
		help:     help.New(),
		keys:     common.DefaultFormKeyMap(),
		state:    DetailStateNotFound,
	}

	if ctrl != nil {
		for _, h := range ctrl.Hives() {
			if h.ClientID == clientID {
				m.hive = h
				m.state = DetailStateEditing
				break
			}
		}
	}
	m.inputs[fieldName].SetValue(m.hive.Name)
	m.inputs[fieldImage].SetValue(m.hive.Image)
	m.inputs[fieldDescription].SetValue(m.hive.Description)
	m.updateFocus()

	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the detail screen
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.state == DetailStateSaving {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			return m, navigateBack

		case m.state == DetailStateNotFound:
			return m, nil

		case key.Matches(msg, m.keys.Tab):
			m.focusIndex = (m.focusIndex + 1) % fieldCount
			m.updateFocus()
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.focusIndex--
			if m.focusIndex < 0 {
				m.focusIndex = fieldCount - 1
			}
			m.updateFocus()
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			if m.focusIndex == fieldSubmit || m.focusIndex == fieldDescription {
				return m.submit()
			}
			m.focusIndex++
			m.updateFocus()
			return m, nil
		}

	case DetailSavedMsg:
		m.hive = msg.Hive
		return m, navigateBack

	case DetailErrorMsg:
		m.state = DetailStateError
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.state == DetailStateSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.focusIndex < fieldSubmit && (m.state == DetailStateEditing || m.state == DetailStateError) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the detail screen
func (m DetailModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Edit Hive"))
	content.WriteString("\n")

	switch m.state {
	case DetailStateNotFound:
		content.WriteString(common.ErrorTextStyle.Render("This hive no longer exists."))
		content.WriteString("\n\n")
		content.WriteString(common.FormatHelp("esc", "back"))
		return m.place(content.String())

	case DetailStateSaving:
		content.WriteString(fmt.Sprintf("%s Saving %s...", m.spinner.View(), m.hive.Name))
		return m.place(content.String())
	}

	if m.hive.ID != "" {
		content.WriteString(common.SubtitleStyle.Render("ID " + m.hive.ID))
		content.WriteString("\n")
	}

	labels := []string{"Name", "Image", "Description"}
	for i, label := range labels {
		if m.focusIndex == i {
			content.WriteString(common.SelectedStyle.Render(label))
		} else {
			content.WriteString(common.UnselectedStyle.Render(label))
		}
		content.WriteString("\n")

		inputStyle := common.InputStyle
		if m.focusIndex == i {
			inputStyle = common.FocusedInputStyle
		}
		content.WriteString(inputStyle.Render(m.inputs[i].View()))
		content.WriteString("\n\n")
	}

	buttonText := "  Save  "
	switch {
	case m.focusIndex == fieldSubmit && m.canSubmit():
		content.WriteString(common.ButtonStyle.Render(buttonText))
	case m.canSubmit():
		content.WriteString(common.ButtonStyle.Copy().Background(common.ColorBorder).Render(buttonText))
	default:
		content.WriteString(common.DisabledButtonStyle.Render(buttonText))
	}

	if m.state == DetailStateError && m.err != nil {
		content.WriteString("\n\n")
		content.WriteString(common.ErrorTextStyle.Render("Error: " + m.err.Error()))
	}

	content.WriteString("\n\n")
	content.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))

	return m.place(content.String())
}

func (m DetailModel) place(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func (m *DetailModel) updateFocus() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m DetailModel) canSubmit() bool {
	return strings.TrimSpace(m.inputs[fieldName].Value()) != ""
}

func (m DetailModel) submit() (DetailModel, tea.Cmd) {
	if !m.canSubmit() || m.ctrl == nil {
		return m, nil
	}

	name := strings.TrimSpace(m.inputs[fieldName].Value())
	image := strings.TrimSpace(m.inputs[fieldImage].Value())
	desc := strings.TrimSpace(m.inputs[fieldDescription].Value())

	fut, err := m.ctrl.Edit(context.Background(), m.clientID, func(h *models.Hive) {
		h.Name = name
		h.Image = image
		h.Description = desc
	})
	if err != nil {
		m.state = DetailStateError
		m.err = err
		return m, nil
	}

	m.state = DetailStateSaving
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, waitForDetailSave(fut))
}

func waitForDetailSave(fut *store.Future) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		hive, err := fut.Wait(ctx)
		if err != nil {
			return DetailErrorMsg{Err: err}
		}
		return DetailSavedMsg{Hive: hive}
	}
}

func navigateBack() tea.Msg {
	return NavigateMsg{Screen: "back"}
}

// Values returns the current form values
func (m DetailModel) Values() (name, image, description string) {
	return m.inputs[fieldName].Value(), m.inputs[fieldImage].Value(), m.inputs[fieldDescription].Value()
}
