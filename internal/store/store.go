// Package store keeps the client-side collection of hives and persists it
// through a Gateway. It owns record identity and lifecycle; callers only ever
// see copies of the records.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/beehive-tools/hivecli/internal/logging"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrRecordNotFound is returned for unknown or deleted client IDs.
var ErrRecordNotFound = errors.New("record not found")

// Gateway is the remote side of the store, implemented by *api.Client.
type Gateway interface {
	ListHives(ctx context.Context) ([]models.Hive, error)
	CreateHive(ctx context.Context, hive models.Hive) (*models.Hive, error)
	UpdateHive(ctx context.Context, id string, hive models.Hive) (*models.Hive, error)
	DeleteHive(ctx context.Context, id string) error
}

// EventKind describes what happened to the collection.
type EventKind int

const (
	EventCreated EventKind = iota
	EventUpdated
	EventSaving
	EventSaved
	EventSaveFailed
	EventDeleted
	EventLoaded
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventUpdated:
		return "updated"
	case EventSaving:
		return "saving"
	case EventSaved:
		return "saved"
	case EventSaveFailed:
		return "save_failed"
	case EventDeleted:
		return "deleted"
	case EventLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Event is published after every membership or field change.
// Hive is zero for EventLoaded.
type Event struct {
	Kind EventKind
	Hive models.Hive
	Err  error
}

// Store is the in-memory hive collection backed by a Gateway.
type Store struct {
	gateway   Gateway
	log       *log.Entry
	newID     func() string
	opTimeout time.Duration

	mu       sync.RWMutex
	records  []*models.Hive
	inflight map[string]*Future // last queued operation per client ID

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger entry used for persistence failures.
func WithLogger(entry *log.Entry) Option {
	return func(s *Store) {
		s.log = entry
	}
}

// WithIDGenerator replaces the UUID client ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithOperationTimeout bounds every gateway call made by Save and Destroy.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.opTimeout = d
	}
}

// New creates an empty store.
func New(gateway Gateway, opts ...Option) *Store {
	s := &Store{
		gateway:  gateway,
		log:      logging.Component("store"),
		newID:    uuid.NewString,
		inflight: make(map[string]*Future),
		subs:     make(map[int]func(Event)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateRecord adds a new, uncommitted hive to the collection and returns a
// copy of it. Nothing is sent to the server until Save is called.
func (s *Store) CreateRecord(fields models.Hive) models.Hive {
	rec := fields
	rec.ID = ""
	rec.ClientID = s.newID()
	rec.State = models.RecordStateNew

	s.mu.Lock()
	s.records = append(s.records, &rec)
	snapshot := rec
	s.mu.Unlock()

	s.publish(Event{Kind: EventCreated, Hive: snapshot})
	return snapshot
}

// Save persists the record asynchronously: POST for records without a
// server ID, PUT otherwise. Operations on the same record run in call order.
func (s *Store) Save(ctx context.Context, clientID string) *Future {
	return s.enqueue(ctx, clientID, s.doSave)
}

// Destroy deletes the record asynchronously. Records the server never saw
// are removed without network I/O.
func (s *Store) Destroy(ctx context.Context, clientID string) *Future {
	return s.enqueue(ctx, clientID, s.doDestroy)
}

func (s *Store) enqueue(ctx context.Context, clientID string, op func(context.Context, string) (models.Hive, error)) *Future {
	fut := newFuture()

	s.mu.Lock()
	if s.find(clientID) == nil {
		s.mu.Unlock()
		fut.resolve(models.Hive{}, ErrRecordNotFound)
		return fut
	}
	prev := s.inflight[clientID]
	s.inflight[clientID] = fut
	s.mu.Unlock()

	go func() {
		if prev != nil {
			<-prev.Done()
		}

		opCtx, cancel := s.operationContext(ctx)
		hive, err := op(opCtx, clientID)
		cancel()

		s.mu.Lock()
		if s.inflight[clientID] == fut {
			delete(s.inflight, clientID)
		}
		s.mu.Unlock()

		fut.resolve(hive, err)
	}()

	return fut
}

func (s *Store) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout > 0 {
		return context.WithTimeout(ctx, s.opTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Store) doSave(ctx context.Context, clientID string) (models.Hive, error) {
	s.mu.Lock()
	rec := s.find(clientID)
	if rec == nil {
		s.mu.Unlock()
		return models.Hive{}, ErrRecordNotFound
	}
	rec.State = models.RecordStateSaving
	submitted := *rec
	s.mu.Unlock()

	s.publish(Event{Kind: EventSaving, Hive: submitted})

	var (
		saved *models.Hive
		err   error
	)
	if submitted.IsNew() {
		saved, err = s.gateway.CreateHive(ctx, submitted)
	} else {
		saved, err = s.gateway.UpdateHive(ctx, submitted.ID, submitted)
	}

	s.mu.Lock()
	rec = s.find(clientID)
	if rec == nil {
		// deleted locally while the request was in flight
		s.mu.Unlock()
		if err != nil {
			return submitted, err
		}
		return submitted, ErrRecordNotFound
	}

	if err != nil {
		rec.State = models.RecordStateError
		snapshot := *rec
		s.mu.Unlock()

		s.log.WithError(err).WithFields(log.Fields{
			"client_id": clientID,
			"id":        snapshot.ID,
			"name":      snapshot.Name,
		}).Error("Failed to save hive")
		s.publish(Event{Kind: EventSaveFailed, Hive: snapshot, Err: err})
		return snapshot, err
	}

	changedMeanwhile := !sameAttributes(*rec, submitted)
	if saved != nil && saved.ID != "" {
		rec.ID = saved.ID
		// a Load during the create may already have added the server copy
		if dropped := s.dropDuplicates(rec); dropped > 0 {
			s.log.WithFields(log.Fields{
				"client_id": clientID,
				"id":        rec.ID,
				"dropped":   dropped,
			}).Debug("Merged loaded copy into saved hive")
		}
	}
	if changedMeanwhile {
		// keep the newer local edits, they still need a save
		rec.State = models.RecordStateDirty
	} else {
		if saved != nil {
			rec.Name = saved.Name
			rec.Image = saved.Image
			rec.Description = saved.Description
			rec.IsCompleted = saved.IsCompleted
		}
		rec.State = models.RecordStatePersisted
	}
	snapshot := *rec
	s.mu.Unlock()

	s.log.WithFields(log.Fields{
		"client_id": clientID,
		"id":        snapshot.ID,
	}).Debug("Saved hive")
	s.publish(Event{Kind: EventSaved, Hive: snapshot})
	return snapshot, nil
}

func (s *Store) doDestroy(ctx context.Context, clientID string) (models.Hive, error) {
	s.mu.Lock()
	rec := s.find(clientID)
	if rec == nil {
		s.mu.Unlock()
		return models.Hive{}, ErrRecordNotFound
	}
	snapshot := *rec
	s.mu.Unlock()

	if !snapshot.IsNew() {
		if err := s.gateway.DeleteHive(ctx, snapshot.ID); err != nil {
			s.log.WithError(err).WithFields(log.Fields{
				"client_id": clientID,
				"id":        snapshot.ID,
			}).Error("Failed to delete hive")
			return snapshot, err
		}
	}

	s.mu.Lock()
	s.remove(clientID)
	s.mu.Unlock()

	snapshot.State = models.RecordStateDeleted
	s.publish(Event{Kind: EventDeleted, Hive: snapshot})
	return snapshot, nil
}

// Load replaces the committed part of the collection with the server's list.
// Records that are new, in flight, failed or locally modified are kept.
func (s *Store) Load(ctx context.Context) error {
	hives, err := s.gateway.ListHives(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to load hives")
		return err
	}

	s.mu.Lock()
	byID := make(map[string]*models.Hive, len(s.records))
	for _, rec := range s.records {
		if rec.ID != "" {
			byID[rec.ID] = rec
		}
	}

	merged := make([]*models.Hive, 0, len(hives)+len(s.records))
	seen := make(map[string]bool, len(hives))
	for _, h := range hives {
		if h.ID == "" || seen[h.ID] {
			continue
		}
		seen[h.ID] = true

		if existing, ok := byID[h.ID]; ok {
			if existing.State == models.RecordStatePersisted {
				clientID := existing.ClientID
				*existing = h
				existing.ClientID = clientID
				existing.State = models.RecordStatePersisted
			}
			merged = append(merged, existing)
			continue
		}

		rec := h
		rec.ClientID = s.newID()
		rec.State = models.RecordStatePersisted
		merged = append(merged, &rec)
	}
	for _, rec := range s.records {
		if rec.ID == "" || (!seen[rec.ID] && rec.State != models.RecordStatePersisted) {
			merged = append(merged, rec)
		}
	}
	s.records = merged
	s.mu.Unlock()

	s.log.WithField("count", len(seen)).Debug("Loaded hives")
	s.publish(Event{Kind: EventLoaded})
	return nil
}

// Update applies fn to a copy of the record and stores the result. ClientID
// and State cannot be changed through fn. A persisted record becomes dirty.
func (s *Store) Update(clientID string, fn func(*models.Hive)) (models.Hive, error) {
	s.mu.Lock()
	rec := s.find(clientID)
	if rec == nil {
		s.mu.Unlock()
		return models.Hive{}, ErrRecordNotFound
	}

	updated := *rec
	fn(&updated)
	updated.ClientID = rec.ClientID
	updated.State = rec.State
	updated.ID = rec.ID

	if sameAttributes(updated, *rec) {
		snapshot := *rec
		s.mu.Unlock()
		return snapshot, nil
	}
	if updated.State == models.RecordStatePersisted {
		updated.State = models.RecordStateDirty
	}
	*rec = updated
	snapshot := *rec
	s.mu.Unlock()

	s.publish(Event{Kind: EventUpdated, Hive: snapshot})
	return snapshot, nil
}

// SetCompleted sets the isCompleted flag of a record.
func (s *Store) SetCompleted(clientID string, completed bool) (models.Hive, error) {
	return s.Update(clientID, func(h *models.Hive) {
		h.IsCompleted = completed
	})
}

// Hives returns copies of all records in collection order.
func (s *Store) Hives() []models.Hive {
	return s.FilterBy(nil)
}

// FilterBy returns copies of the records matching pred. A nil pred matches
// everything.
func (s *Store) FilterBy(pred func(models.Hive) bool) []models.Hive {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Hive, 0, len(s.records))
	for _, rec := range s.records {
		if pred == nil || pred(*rec) {
			out = append(out, *rec)
		}
	}
	return out
}

// Find returns the record with the given client ID.
func (s *Store) Find(clientID string) (models.Hive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.find(clientID)
	if rec == nil {
		return models.Hive{}, false
	}
	return *rec, true
}

// FindByID returns the record with the given server ID.
func (s *Store) FindByID(id string) (models.Hive, bool) {
	if id == "" {
		return models.Hive{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			return *rec, true
		}
	}
	return models.Hive{}, false
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe registers fn for every subsequent event. Observers run on the
// goroutine that caused the change, never while the store is locked.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// find must be called with s.mu held.
func (s *Store) find(clientID string) *models.Hive {
	for _, rec := range s.records {
		if rec.ClientID == clientID {
			return rec
		}
	}
	return nil
}

// dropDuplicates removes every record other than keep that carries keep's
// server ID. Must be called with s.mu held.
func (s *Store) dropDuplicates(keep *models.Hive) int {
	kept := s.records[:0]
	dropped := 0
	for _, rec := range s.records {
		if rec != keep && rec.ID == keep.ID {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return dropped
}

// remove must be called with s.mu held.
func (s *Store) remove(clientID string) {
	for i, rec := range s.records {
		if rec.ClientID == clientID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return
		}
	}
}

func sameAttributes(a, b models.Hive) bool {
	return a.Name == b.Name &&
		a.Image == b.Image &&
		a.Description == b.Description &&
		a.IsCompleted == b.IsCompleted
}
