package common

import (
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#F5A623") // Honey
	ColorSecondary = lipgloss.Color("#FFD166") // Pollen
	ColorAccent    = lipgloss.Color("#8D6E63") // Wax

	// Status colors
	ColorSuccess = lipgloss.Color("#7CB342")
	ColorWarning = lipgloss.Color("#FFB300")
	ColorError   = lipgloss.Color("#E53935")

	ColorSubtle     = lipgloss.Color("#666666")
	ColorMuted      = lipgloss.Color("#888888")
	ColorBorder     = lipgloss.Color("#444444")
	ColorForeground = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginBottom(1)

	MutedTextStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	PrimaryTextStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary)

	// Completed hives are struck through
	CompletedTextStyle = lipgloss.NewStyle().
				Foreground(ColorSubtle).
				Strikethrough(true)

	// Form field labels
	SelectedStyle = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#1a1a1a")).
			Bold(true).
			Padding(0, 1)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#1a1a1a")).
			Padding(0, 2).
			MarginTop(1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Background(ColorBorder).
				Foreground(ColorMuted).
				Padding(0, 2).
				MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	// Footer with the remaining count
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(ColorForeground).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpSepStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)
)

// Logo returns the hivecli ASCII art logo
func Logo() string {
	logo := `
 _     _            _ _
| |__ (_)_   _____ | (_)
| '_ \| \ \ / / __|| | |
| | | | |\ V / (__ | | |
|_| |_|_| \_/ \___||_|_|
`
	return lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Render(logo)
}

// FormatHelp formats a help line with key and description
func FormatHelp(key, desc string) string {
	return HelpKeyStyle.Render(key) +
		HelpSepStyle.Render(" ") +
		HelpDescStyle.Render(desc)
}

// StatusBox renders the completion checkbox of a hive.
func StatusBox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// StateLabel describes the persistence state of a record for display.
// Persisted records show nothing.
func StateLabel(state models.RecordState) string {
	switch state {
	case models.RecordStateNew:
		return "unsaved"
	case models.RecordStateSaving:
		return "saving..."
	case models.RecordStateDirty:
		return "modified"
	case models.RecordStateError:
		return "save failed"
	case models.RecordStateDeleted:
		return "deleted"
	default:
		return ""
	}
}
