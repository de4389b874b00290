package screens

import (
	"errors"
	"testing"

	"github.com/beehive-tools/hivecli/internal/auth"
	"github.com/beehive-tools/hivecli/internal/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialStore struct {
	token     string
	deleteErr error
}

func (f *fakeCredentialStore) Get() (*models.Credentials, error) {
	if f.token == "" {
		return nil, auth.ErrNoCredentials
	}
	return &models.Credentials{Token: f.token}, nil
}

func (f *fakeCredentialStore) Save(creds *models.Credentials) error {
	f.token = creds.Token
	return nil
}

func (f *fakeCredentialStore) Delete() error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.token = ""
	return nil
}

func (f *fakeCredentialStore) Exists() bool { return f.token != "" }

func newTestSettings(stored string, env map[string]string) (SettingsModel, *fakeCredentialStore) {
	store := &fakeCredentialStore{token: stored}
	resolver := &auth.Resolver{
		Store:  store,
		Getenv: func(k string) string { return env[k] },
	}
	m := NewSettingsModel(models.DefaultEndpoint(), resolver)
	m.width = 100
	m.height = 40
	return m, store
}

func TestNewSettingsModel(t *testing.T) {
	m, _ := newTestSettings("", nil)

	assert.Equal(t, SettingsStateReady, m.state)
	assert.Equal(t, auth.SourceNone, m.source)
	assert.False(t, m.hasKeychain)
	assert.Nil(t, m.Init())
}

func TestSettingsModel_CredentialSources(t *testing.T) {
	m, _ := newTestSettings("stored-token", nil)
	assert.True(t, m.hasKeychain)
	assert.Equal(t, auth.SourceKeychain, m.source)

	m, _ = newTestSettings("stored-token", map[string]string{auth.EnvToken: "env-token"})
	assert.True(t, m.hasKeychain)
	assert.Equal(t, auth.SourceEnv, m.source)
	assert.Equal(t, "env-token", m.token)
}

func TestSettingsModel_WindowSizeMsg(t *testing.T) {
	m, _ := newTestSettings("", nil)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 50, m.height)
}

func TestSettingsModel_BackNavigation(t *testing.T) {
	m, _ := newTestSettings("", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	navMsg, ok := cmd().(NavigateMsg)
	assert.True(t, ok)
	assert.Equal(t, "back", navMsg.Screen)
}

func TestSettingsModel_QuitKey(t *testing.T) {
	m, _ := newTestSettings("", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.NotNil(t, cmd)
}

func TestSettingsModel_ClearKey_NoKeychain(t *testing.T) {
	m, _ := newTestSettings("", nil)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.Equal(t, SettingsStateReady, m.state)
	assert.Nil(t, cmd)
}

func TestSettingsModel_ClearFlow(t *testing.T) {
	m, store := newTestSettings("stored-token", nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	assert.Equal(t, SettingsStateConfirmClear, m.state)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Equal(t, SettingsStateClearing, m.state)
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())
	assert.Equal(t, SettingsStateSuccess, m.state)
	assert.Empty(t, store.token)
	assert.False(t, m.hasKeychain)
	assert.Equal(t, auth.SourceNone, m.source)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.Equal(t, SettingsStateReady, m.state)
}

func TestSettingsModel_ConfirmClear_Cancel(t *testing.T) {
	m, store := newTestSettings("stored-token", nil)
	m.state = SettingsStateConfirmClear

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.Equal(t, SettingsStateReady, m.state)
	assert.Equal(t, "stored-token", store.token)
}

func TestSettingsModel_ClearFailure(t *testing.T) {
	m, store := newTestSettings("stored-token", nil)
	store.deleteErr = errors.New("keychain locked")
	m.state = SettingsStateClearing

	m, _ = m.Update(m.clearCredentials()())

	assert.Equal(t, SettingsStateError, m.state)
	assert.EqualError(t, m.err, "keychain locked")
	assert.Contains(t, m.View(), "keychain locked")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	assert.Equal(t, SettingsStateReady, m.state)
}

func TestSettingsModel_View(t *testing.T) {
	m, _ := newTestSettings("stored-token", nil)

	view := m.View()

	assert.Contains(t, view, "Settings")
	assert.Contains(t, view, "http://localhost:8181")
	assert.Contains(t, view, "v1")
	assert.Contains(t, view, "Stored")
	assert.Contains(t, view, "Keychain")
	assert.Contains(t, view, "clear keychain")
	assert.NotContains(t, view, "stored-token", "token must be masked")
}

func TestSettingsModel_ViewConfirmClear(t *testing.T) {
	m, _ := newTestSettings("stored-token", nil)
	m.state = SettingsStateConfirmClear

	view := m.View()

	assert.Contains(t, view, "Remove the stored API token?")
	assert.Contains(t, view, "confirm")
	assert.Contains(t, view, "cancel")
}

func TestSettingsModel_ViewAnonymous(t *testing.T) {
	m, _ := newTestSettings("", nil)

	view := m.View()

	assert.Contains(t, view, "Not stored")
	assert.Contains(t, view, "anonymous")
	assert.NotContains(t, view, "clear keychain")
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc", "****"},
		{"abcdef", "****"},
		{"abcdefg", "ab***fg"},
		{"stored-token", "st********en"},
	}

	for _, tt := range tests {
		result := maskString(tt.input)
		assert.Equal(t, tt.expected, result, "maskString(%q)", tt.input)
	}
}
