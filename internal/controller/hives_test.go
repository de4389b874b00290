package controller

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/beehive-tools/hivecli/internal/api"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, initial ...models.Hive) (*HivesController, *store.Store, *testutil.FakeBeehive) {
	t.Helper()
	fb := testutil.NewFakeBeehive(initial...)
	t.Cleanup(fb.Close)

	logger, _ := test.NewNullLogger()
	s := store.New(api.NewClient(fb.Endpoint()), store.WithLogger(log.NewEntry(logger)))
	return NewHivesController(s), s, fb
}

func waitFor(t *testing.T, fut *store.Future) (models.Hive, error) {
	t.Helper()
	require.NotNil(t, fut)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return fut.Wait(ctx)
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name     string
		hives    []models.Hive
		expected int
	}{
		{"empty", nil, 0},
		{"all pending", []models.Hive{{Name: "a"}, {Name: "b"}}, 2},
		{"mixed", []models.Hive{{Name: "a", IsCompleted: true}, {Name: "b"}, {Name: "c"}}, 2},
		{"all completed", []models.Hive{{Name: "a", IsCompleted: true}, {Name: "b", IsCompleted: true}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Remaining(tt.hives))
		})
	}
}

func TestInflection(t *testing.T) {
	tests := []struct {
		remaining int
		expected  string
	}{
		{0, "items"},
		{1, "item"},
		{2, "items"},
		{100, "items"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Inflection(tt.remaining), "Inflection(%d)", tt.remaining)
	}
}

func TestCreateHive_BlankInputIsIgnored(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		t.Run("input "+input, func(t *testing.T) {
			c, s, fb := newTestController(t)
			c.SetNewName(input)

			fut := c.CreateHive(context.Background())

			assert.Nil(t, fut)
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, input, c.NewName(), "buffer must not be cleared")
			assert.Empty(t, fb.Requests())
		})
	}
}

func TestCreateHive_Apiary(t *testing.T) {
	c, s, fb := newTestController(t)
	c.SetNewName("Apiary")

	fut := c.CreateHive(context.Background())

	// optimistic: in the collection before the save completes
	require.Equal(t, 1, s.Len())
	hive := s.Hives()[0]
	assert.Equal(t, "Apiary", hive.Name)
	assert.False(t, hive.IsCompleted)
	assert.Empty(t, c.NewName())
	assert.Equal(t, 1, c.Remaining())
	assert.Equal(t, "item", c.Inflection())

	saved, err := waitFor(t, fut)
	require.NoError(t, err)
	assert.Equal(t, "1", saved.ID)
	assert.Equal(t, models.RecordStatePersisted, saved.State)
	assert.Equal(t, []string{"POST /v1/hives"}, fb.Requests())

	server := fb.Hives()
	require.Len(t, server, 1)
	assert.Equal(t, "Apiary", server[0].Name)
}

func TestCreateHive_TrimsName(t *testing.T) {
	c, s, _ := newTestController(t)
	c.SetNewName("  Apiary  ")

	_, err := waitFor(t, c.CreateHive(context.Background()))

	require.NoError(t, err)
	assert.Equal(t, "Apiary", s.Hives()[0].Name)
}

func TestCreateHive_PersistenceFailure(t *testing.T) {
	c, s, fb := newTestController(t)
	fb.SetFailWith(http.StatusInternalServerError)
	c.SetNewName("Apiary")

	_, err := waitFor(t, c.CreateHive(context.Background()))

	assert.ErrorIs(t, err, api.ErrServerError)
	require.Equal(t, 1, s.Len())
	hive := s.Hives()[0]
	assert.Equal(t, models.RecordStateError, hive.State)
	assert.False(t, hive.State.IsCommitted())
	assert.Empty(t, c.NewName())
}

func TestRemaining_AfterCompletingOne(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SetNewName("first")
	first, err := waitFor(t, c.CreateHive(context.Background()))
	require.NoError(t, err)
	c.SetNewName("second")
	_, err = waitFor(t, c.CreateHive(context.Background()))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Remaining())
	assert.Equal(t, "items", c.Inflection())

	fut, err := c.SetCompleted(context.Background(), first.ClientID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Remaining())
	assert.Equal(t, "item", c.Inflection())

	_, err = waitFor(t, fut)
	require.NoError(t, err)
	assert.Len(t, c.Completed(), 1)
	assert.Len(t, c.Pending(), 1)
}

func TestRemaining_AllCompleted(t *testing.T) {
	c, s, _ := newTestController(t,
		models.Hive{ID: "1", Name: "cronbee"},
		models.Hive{ID: "2", Name: "ircbee"},
	)
	require.NoError(t, c.Refresh(context.Background()))

	for _, h := range s.Hives() {
		_, err := c.SetCompleted(context.Background(), h.ClientID, true)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, "items", c.Inflection())
}

func TestToggleCompleted(t *testing.T) {
	c, s, fb := newTestController(t, models.Hive{ID: "1", Name: "cronbee"})
	require.NoError(t, c.Refresh(context.Background()))
	hive := s.Hives()[0]

	fut, err := c.ToggleCompleted(context.Background(), hive.ClientID)
	require.NoError(t, err)
	saved, err := waitFor(t, fut)
	require.NoError(t, err)
	assert.True(t, saved.IsCompleted)
	assert.True(t, fb.Hives()[0].IsCompleted)

	fut, err = c.ToggleCompleted(context.Background(), hive.ClientID)
	require.NoError(t, err)
	saved, err = waitFor(t, fut)
	require.NoError(t, err)
	assert.False(t, saved.IsCompleted)

	_, err = c.ToggleCompleted(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestEdit(t *testing.T) {
	c, s, fb := newTestController(t, models.Hive{ID: "1", Name: "cronbee"})
	require.NoError(t, c.Refresh(context.Background()))
	hive := s.Hives()[0]

	fut, err := c.Edit(context.Background(), hive.ClientID, func(h *models.Hive) {
		h.Description = "Schedules events"
		h.Image = "cronbee.png"
	})
	require.NoError(t, err)
	_, err = waitFor(t, fut)
	require.NoError(t, err)

	assert.Equal(t, "Schedules events", fb.Hives()[0].Description)
	assert.Equal(t, "cronbee.png", fb.Hives()[0].Image)
}

func TestDelete(t *testing.T) {
	c, s, fb := newTestController(t, models.Hive{ID: "1", Name: "cronbee"})
	require.NoError(t, c.Refresh(context.Background()))

	_, err := waitFor(t, c.Delete(context.Background(), s.Hives()[0].ClientID))

	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, fb.Hives())
	assert.Equal(t, 0, c.Remaining())
}

func TestWatch(t *testing.T) {
	c, s, _ := newTestController(t)

	var mu sync.Mutex
	var seen []string
	stop := c.Watch(func(remaining int, inflection string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, fmt.Sprintf("%s:%d", inflection, remaining))
	})

	c.SetNewName("Apiary")
	fut := c.CreateHive(context.Background())
	_, err := waitFor(t, fut)
	require.NoError(t, err)

	hive := s.Hives()[0]
	_, err = s.SetCompleted(hive.ClientID, true)
	require.NoError(t, err)

	stop()
	_, err = s.SetCompleted(hive.ClientID, false)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	// saving/saved events do not change the count and are not reported
	assert.Equal(t, []string{"items:0", "item:1", "items:0"}, seen)
}

func TestWatch_ConcurrentChangesEndOnCurrentCount(t *testing.T) {
	var initial []models.Hive
	for i := 1; i <= 20; i++ {
		initial = append(initial, models.Hive{ID: fmt.Sprintf("%d", i), Name: fmt.Sprintf("Hive %d", i)})
	}
	c, s, _ := newTestController(t, initial...)
	require.NoError(t, c.Refresh(context.Background()))

	var mu sync.Mutex
	var last int
	stop := c.Watch(func(remaining int, _ string) {
		mu.Lock()
		last = remaining
		mu.Unlock()
	})
	defer stop()

	var wg sync.WaitGroup
	for _, h := range s.Hives() {
		wg.Add(1)
		go func(clientID string) {
			defer wg.Done()
			_, err := s.SetCompleted(clientID, true)
			assert.NoError(t, err)
		}(h.ClientID)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, c.Remaining(), last)
}
