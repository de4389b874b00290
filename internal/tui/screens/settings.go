package screens

import (
	"fmt"
	"strings"

	"github.com/beehive-tools/hivecli/internal/auth"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SettingsState represents the current state of the settings screen
type SettingsState int

const (
	SettingsStateReady SettingsState = iota
	SettingsStateConfirmClear
	SettingsStateClearing
	SettingsStateSuccess
	SettingsStateError
)

// CredentialsClearedMsg is sent when the stored token was removed
type CredentialsClearedMsg struct {
	Error error
}

// SettingsModel shows the endpoint in use and where the token comes from
type SettingsModel struct {
	help     help.Model
	keys     settingsKeyMap
	endpoint models.Endpoint
	resolver *auth.Resolver

	state       SettingsState
	err         error
	source      auth.Source
	hasKeychain bool
	token       string
	width       int
	height      int
}

type settingsKeyMap struct {
	Clear   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultSettingsKeyMap() settingsKeyMap {
	return settingsKeyMap{
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear keychain"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// NewSettingsModel creates a new settings screen model
func NewSettingsModel(endpoint models.Endpoint, resolver *auth.Resolver) SettingsModel {
	m := SettingsModel{
		help:     help.New(),
		keys:     defaultSettingsKeyMap(),
		endpoint: endpoint,
		resolver: resolver,
		state:    SettingsStateReady,
	}
	m.checkCredentials()
	return m
}

// Init initializes the settings model
func (m SettingsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the settings screen
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case SettingsStateConfirmClear:
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.state = SettingsStateClearing
				return m, m.clearCredentials()
			case key.Matches(msg, m.keys.Cancel):
				m.state = SettingsStateReady
				return m, nil
			}

		case SettingsStateSuccess, SettingsStateError:
			// Any key returns to ready state
			m.state = SettingsStateReady
			m.checkCredentials()
			return m, nil

		default:
			switch {
			case key.Matches(msg, m.keys.Back):
				return m, navigateBack

			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit

			case key.Matches(msg, m.keys.Clear):
				if m.hasKeychain {
					m.state = SettingsStateConfirmClear
					return m, nil
				}
			}
		}

	case CredentialsClearedMsg:
		if msg.Error != nil {
			m.state = SettingsStateError
			m.err = msg.Error
		} else {
			m.state = SettingsStateSuccess
		}
		m.checkCredentials()
		return m, nil
	}

	return m, nil
}

// View renders the settings screen
func (m SettingsModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Settings"))
	content.WriteString("\n")
	content.WriteString(common.SubtitleStyle.Render("Endpoint and credentials"))
	content.WriteString("\n\n")

	boxStyle := common.BoxStyle.Copy().Width(64)

	content.WriteString(boxStyle.Render(m.renderEndpoint()))
	content.WriteString("\n\n")
	content.WriteString(boxStyle.Render(m.renderCredentialStatus()))
	content.WriteString("\n\n")

	switch m.state {
	case SettingsStateConfirmClear:
		confirmBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(common.ColorWarning).
			Padding(1, 2).
			Width(64)

		confirmContent := common.WarningTextStyle.Render("Remove the stored API token?") + "\n\n" +
			common.MutedTextStyle.Render("Requests will be sent without a token unless "+auth.EnvToken+" is set.") + "\n\n" +
			common.FormatHelp("y", "confirm") + "  " + common.FormatHelp("n", "cancel")

		content.WriteString(confirmBox.Render(confirmContent))

	case SettingsStateClearing:
		content.WriteString(common.MutedTextStyle.Render("Removing token..."))

	case SettingsStateSuccess:
		content.WriteString(common.SuccessTextStyle.Render("Token removed from keychain."))
		content.WriteString("\n")
		content.WriteString(common.MutedTextStyle.Render("Press any key to continue."))

	case SettingsStateError:
		content.WriteString(common.ErrorTextStyle.Render("Error: " + m.err.Error()))
		content.WriteString("\n")
		content.WriteString(common.MutedTextStyle.Render("Press any key to continue."))

	default:
		content.WriteString(m.renderHelp())
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content.String(),
	)
}

func (m SettingsModel) renderEndpoint() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(common.ColorSecondary)
	labelStyle := lipgloss.NewStyle().Foreground(common.ColorMuted).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(common.ColorForeground)

	b.WriteString(headerStyle.Render("Endpoint"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Host:"))
	b.WriteString(valueStyle.Render(m.endpoint.Host))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Namespace:"))
	b.WriteString(valueStyle.Render(m.endpoint.Namespace))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Hives URL:"))
	b.WriteString(valueStyle.Render(m.endpoint.ResourceURL(models.HivesResource)))

	return b.String()
}

func (m SettingsModel) renderCredentialStatus() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(common.ColorSecondary)
	labelStyle := lipgloss.NewStyle().Foreground(common.ColorMuted).Width(14)

	b.WriteString(headerStyle.Render("API Token"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Keychain:"))
	if m.hasKeychain {
		b.WriteString(common.SuccessTextStyle.Render("Stored"))
	} else {
		b.WriteString(common.MutedTextStyle.Render("Not stored"))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Source:"))
	switch m.source {
	case auth.SourceEnv:
		b.WriteString(common.PrimaryTextStyle.Render("$" + auth.EnvToken))
	case auth.SourceKeychain:
		b.WriteString(common.PrimaryTextStyle.Render("Keychain"))
	default:
		b.WriteString(common.MutedTextStyle.Render("None (anonymous requests)"))
	}
	if m.token != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Token:"))
		b.WriteString(maskString(m.token))
	}

	return b.String()
}

func (m SettingsModel) renderHelp() string {
	var helpText []string

	if m.hasKeychain {
		helpText = append(helpText, common.FormatHelp("c", "clear keychain"))
	}
	helpText = append(helpText, common.FormatHelp("esc", "back"))

	return strings.Join(helpText, "  ")
}

func (m *SettingsModel) checkCredentials() {
	m.source = auth.SourceNone
	m.token = ""
	m.hasKeychain = false
	if m.resolver == nil {
		return
	}

	if m.resolver.Store != nil {
		m.hasKeychain = m.resolver.Store.Exists()
	}
	creds, source, err := m.resolver.Resolve()
	if err == nil && creds != nil {
		m.source = source
		m.token = creds.Token
	}
}

func (m SettingsModel) clearCredentials() tea.Cmd {
	var store auth.CredentialStore
	if m.resolver != nil {
		store = m.resolver.Store
	}
	return func() tea.Msg {
		if store == nil {
			return CredentialsClearedMsg{Error: fmt.Errorf("keychain not available")}
		}
		return CredentialsClearedMsg{Error: store.Delete()}
	}
}

// maskString masks a string, showing only first and last 2 characters
func maskString(s string) string {
	if len(s) <= 6 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
