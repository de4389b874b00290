package screens

import (
	"testing"

	"github.com/beehive-tools/hivecli/internal/api"
	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestController(t *testing.T, initial ...models.Hive) (*controller.HivesController, *testutil.FakeBeehive) {
	t.Helper()
	fb := testutil.NewFakeBeehive(initial...)
	t.Cleanup(fb.Close)

	logger, _ := test.NewNullLogger()
	s := store.New(api.NewClient(fb.Endpoint()), store.WithLogger(log.NewEntry(logger)))
	return controller.NewHivesController(s), fb
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
