// Package controller mediates between user input and the hive store and
// derives the presentation values shown next to the list.
package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
)

// Remaining counts the hives that are not completed.
func Remaining(hives []models.Hive) int {
	n := 0
	for _, h := range hives {
		if !h.IsCompleted {
			n++
		}
	}
	return n
}

// Inflection returns the word form matching remaining.
func Inflection(remaining int) string {
	if remaining == 1 {
		return "item"
	}
	return "items"
}

// HivesController holds the input buffer for new hives and exposes the
// derived remaining count. It does not own the records; the store does.
type HivesController struct {
	store *store.Store

	mu      sync.Mutex
	newName string
}

// NewHivesController creates a controller over s.
func NewHivesController(s *store.Store) *HivesController {
	return &HivesController{store: s}
}

// NewName returns the current input buffer.
func (c *HivesController) NewName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newName
}

// SetNewName replaces the input buffer.
func (c *HivesController) SetNewName(name string) {
	c.mu.Lock()
	c.newName = name
	c.mu.Unlock()
}

// CreateHive creates a hive from the input buffer and starts saving it.
// Blank input is ignored: nil is returned, the buffer is left as is and no
// record is created. The stored name is the trimmed input.
func (c *HivesController) CreateHive(ctx context.Context) *store.Future {
	c.mu.Lock()
	name := strings.TrimSpace(c.newName)
	if name == "" {
		c.mu.Unlock()
		return nil
	}
	c.newName = ""
	c.mu.Unlock()

	hive := c.store.CreateRecord(models.Hive{
		Name:        name,
		IsCompleted: false,
	})

	return c.store.Save(ctx, hive.ClientID)
}

// Hives returns the current collection.
func (c *HivesController) Hives() []models.Hive {
	return c.store.Hives()
}

// FindByID looks a hive up by its server id.
func (c *HivesController) FindByID(id string) (models.Hive, bool) {
	return c.store.FindByID(id)
}

// Pending returns the hives that are not completed.
func (c *HivesController) Pending() []models.Hive {
	return c.store.FilterBy(func(h models.Hive) bool { return !h.IsCompleted })
}

// Completed returns the completed hives.
func (c *HivesController) Completed() []models.Hive {
	return c.store.FilterBy(func(h models.Hive) bool { return h.IsCompleted })
}

// Remaining returns the number of hives that are not completed.
func (c *HivesController) Remaining() int {
	return Remaining(c.store.Hives())
}

// Inflection returns "item" when exactly one hive remains, "items" otherwise.
func (c *HivesController) Inflection() string {
	return Inflection(c.Remaining())
}

// Watch calls fn with the new remaining count and inflection every time a
// store change alters the count. fn is called once immediately. Calls to fn
// are serialized in the order the counts were observed; fn must not block.
func (c *HivesController) Watch(fn func(remaining int, inflection string)) (stop func()) {
	var (
		mu   sync.Mutex
		last int
	)
	mu.Lock()
	defer mu.Unlock()

	stop = c.store.Subscribe(func(store.Event) {
		mu.Lock()
		defer mu.Unlock()

		n := c.Remaining()
		if n == last {
			return
		}
		last = n
		fn(n, Inflection(n))
	})

	last = c.Remaining()
	fn(last, Inflection(last))
	return stop
}

// ToggleCompleted flips the isCompleted flag of a hive and saves it.
func (c *HivesController) ToggleCompleted(ctx context.Context, clientID string) (*store.Future, error) {
	hive, ok := c.store.Find(clientID)
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return c.SetCompleted(ctx, clientID, !hive.IsCompleted)
}

// SetCompleted sets the isCompleted flag of a hive and saves it.
func (c *HivesController) SetCompleted(ctx context.Context, clientID string, completed bool) (*store.Future, error) {
	if _, err := c.store.SetCompleted(clientID, completed); err != nil {
		return nil, err
	}
	return c.store.Save(ctx, clientID), nil
}

// Edit applies fn to a hive and saves it.
func (c *HivesController) Edit(ctx context.Context, clientID string, fn func(*models.Hive)) (*store.Future, error) {
	if _, err := c.store.Update(clientID, fn); err != nil {
		return nil, err
	}
	return c.store.Save(ctx, clientID), nil
}

// Delete removes a hive.
func (c *HivesController) Delete(ctx context.Context, clientID string) *store.Future {
	return c.store.Destroy(ctx, clientID)
}

// Refresh reloads the collection from the server.
func (c *HivesController) Refresh(ctx context.Context) error {
	return c.store.Load(ctx)
}
