// Package tui implements the interactive hive list.
package tui

import (
	"github.com/beehive-tools/hivecli/internal/auth"
	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/tui/screens"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current screen in the TUI.
type Screen int

const (
	ScreenHives Screen = iota
	ScreenDetail
	ScreenSettings
)

// Options carries what the settings screen displays.
type Options struct {
	Endpoint models.Endpoint
	Resolver *auth.Resolver
}

// App is the main application model.
type App struct {
	screen     Screen
	prevScreen Screen
	width      int
	height     int
	ready      bool
	ctrl       *controller.HivesController
	opts       Options

	// Screen models
	hivesModel    screens.HivesModel
	detailModel   screens.DetailModel
	settingsModel screens.SettingsModel
}

// NewApp creates a new application instance over ctrl.
func NewApp(ctrl *controller.HivesController, opts Options) *App {
	return &App{
		screen:     ScreenHives,
		ctrl:       ctrl,
		opts:       opts,
		hivesModel: screens.NewHivesModel(ctrl),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.hivesModel.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, a.forwardToCurrentScreen(msg)

	case screens.NavigateMsg:
		return a.handleNavigation(msg.Screen, msg.Data)

	// Results of list operations must reach the list even while another
	// screen is shown.
	case screens.HiveSavedMsg, screens.HiveSaveFailedMsg, screens.HiveDeletedMsg,
		screens.HivesLoadedMsg, screens.HivesErrorMsg, screens.RemainingChangedMsg:
		var cmd tea.Cmd
		a.hivesModel, cmd = a.hivesModel.Update(msg)
		return a, cmd
	}

	return a, a.forwardToCurrentScreen(msg)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.screen {
	case ScreenHives:
		return a.hivesModel.View()
	case ScreenDetail:
		return a.detailModel.View()
	case ScreenSettings:
		return a.settingsModel.View()
	default:
		return "Unknown screen"
	}
}

func (a *App) forwardToCurrentScreen(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch a.screen {
	case ScreenHives:
		a.hivesModel, cmd = a.hivesModel.Update(msg)
	case ScreenDetail:
		a.detailModel, cmd = a.detailModel.Update(msg)
	case ScreenSettings:
		a.settingsModel, cmd = a.settingsModel.Update(msg)
	}

	return cmd
}

func (a *App) handleNavigation(screen string, data interface{}) (tea.Model, tea.Cmd) {
	// Handle "back" separately to avoid overwriting prevScreen
	if screen == "back" {
		a.screen = a.prevScreen
		if a.screen == ScreenHives {
			a.hivesModel, _ = a.hivesModel.Update(screens.HivesChangedMsg{})
		}
		return a, a.forwardToCurrentScreen(tea.WindowSizeMsg{
			Width:  a.width,
			Height: a.height,
		})
	}

	a.prevScreen = a.screen

	var initCmd tea.Cmd

	switch screen {
	case "detail":
		clientID, _ := data.(string)
		a.screen = ScreenDetail
		a.detailModel = screens.NewDetailModel(a.ctrl, clientID)
		initCmd = a.detailModel.Init()
	case "settings":
		a.screen = ScreenSettings
		a.settingsModel = screens.NewSettingsModel(a.opts.Endpoint, a.opts.Resolver)
		initCmd = a.settingsModel.Init()
	case "hives":
		a.screen = ScreenHives
		a.hivesModel, _ = a.hivesModel.Update(screens.HivesChangedMsg{})
	}

	// Forward window size to new screen
	sizeCmd := a.forwardToCurrentScreen(tea.WindowSizeMsg{
		Width:  a.width,
		Height: a.height,
	})

	if initCmd != nil {
		return a, tea.Batch(initCmd, sizeCmd)
	}
	return a, sizeCmd
}

// Watch keeps the hive list in step with the collection until stop is
// called.
func (a *App) Watch() (stop func()) {
	return a.hivesModel.Watch()
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctrl *controller.HivesController, opts Options) error {
	app := NewApp(ctrl, opts)
	stop := app.Watch()
	defer stop()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
