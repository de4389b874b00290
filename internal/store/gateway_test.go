package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/beehive-tools/hivecli/internal/models"
)

// fakeGateway is an in-memory Gateway. Setting block makes every call wait
// until the channel is closed or receives.
type fakeGateway struct {
	mu     sync.Mutex
	hives  map[string]models.Hive
	order  []string
	nextID int
	calls  []string

	createErr error
	updateErr error
	deleteErr error
	listErr   error

	block chan struct{}
	// createGate holds CreateHive after the server stored the hive
	createGate chan struct{}
}

func newFakeGateway(initial ...models.Hive) *fakeGateway {
	g := &fakeGateway{hives: make(map[string]models.Hive)}
	for _, h := range initial {
		g.hives[h.ID] = h
		g.order = append(g.order, h.ID)
	}
	return g
}

func (g *fakeGateway) wait(ctx context.Context) error {
	if g.block == nil {
		return nil
	}
	select {
	case <-g.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) ListHives(ctx context.Context) ([]models.Hive, error) {
	g.record("list")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]models.Hive, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.hives[id])
	}
	return out, nil
}

func (g *fakeGateway) CreateHive(ctx context.Context, hive models.Hive) (*models.Hive, error) {
	g.record("create")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	if g.createErr != nil {
		g.mu.Unlock()
		return nil, g.createErr
	}
	g.nextID++
	hive.ID = fmt.Sprintf("%d", g.nextID)
	hive.ClientID = ""
	hive.State = ""
	g.hives[hive.ID] = hive
	g.order = append(g.order, hive.ID)
	g.mu.Unlock()

	if g.createGate != nil {
		select {
		case <-g.createGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &hive, nil
}

func (g *fakeGateway) stored() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.hives)
}

func (g *fakeGateway) UpdateHive(ctx context.Context, id string, hive models.Hive) (*models.Hive, error) {
	g.record("update " + id)
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	hive.ID = id
	hive.ClientID = ""
	hive.State = ""
	g.hives[id] = hive
	return &hive, nil
}

func (g *fakeGateway) DeleteHive(ctx context.Context, id string) error {
	g.record("delete " + id)
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	delete(g.hives, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}
