// Package testutil provides a fake beehive REST server for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/beehive-tools/hivecli/internal/models"
)

// FakeBeehive serves /v1/hives the way the adapter expects. It is safe for
// concurrent use.
//
// Usage:
//
//	fb := testutil.NewFakeBeehive(models.Hive{ID: "1", Name: "cronbee"})
//	defer fb.Close()
//	client := api.NewClient(fb.Endpoint())
type FakeBeehive struct {
	*httptest.Server

	mu       sync.Mutex
	hives    map[string]models.Hive
	order    []string
	nextID   int
	requests []string

	// FailWith makes every request answer with this status when non-zero.
	FailWith int
	// Token, when set, is required as bearer token.
	Token string
}

// NewFakeBeehive starts a server preloaded with hives.
func NewFakeBeehive(hives ...models.Hive) *FakeBeehive {
	fb := &FakeBeehive{hives: make(map[string]models.Hive)}
	for _, h := range hives {
		fb.hives[h.ID] = h
		fb.order = append(fb.order, h.ID)
		if n, err := strconv.Atoi(h.ID); err == nil && n > fb.nextID {
			fb.nextID = n
		}
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	return fb
}

// Endpoint returns the endpoint pointing at this server.
func (fb *FakeBeehive) Endpoint() models.Endpoint {
	return models.Endpoint{Namespace: models.DefaultNamespace, Host: fb.URL}
}

// Hives returns the server-side state in creation order.
func (fb *FakeBeehive) Hives() []models.Hive {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	out := make([]models.Hive, 0, len(fb.order))
	for _, id := range fb.order {
		out = append(out, fb.hives[id])
	}
	return out
}

// Requests returns "METHOD /path" for every request received.
func (fb *FakeBeehive) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requests...)
}

// SetFailWith changes FailWith while the server is running.
func (fb *FakeBeehive) SetFailWith(status int) {
	fb.mu.Lock()
	fb.FailWith = status
	fb.mu.Unlock()
}

func (fb *FakeBeehive) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.requests = append(fb.requests, r.Method+" "+r.URL.Path)

	if fb.Token != "" && r.Header.Get("Authorization") != "Bearer "+fb.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	if fb.FailWith != 0 {
		writeJSON(w, fb.FailWith, map[string]string{"message": http.StatusText(fb.FailWith)})
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/"+models.DefaultNamespace+"/"+models.HivesResource)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown resource"})
		return
	}
	id := strings.TrimPrefix(rest, "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		out := make([]models.Hive, 0, len(fb.order))
		for _, oid := range fb.order {
			out = append(out, fb.hives[oid])
		}
		writeJSON(w, http.StatusOK, models.HivesPayload{Hives: out})

	case id == "" && r.Method == http.MethodPost:
		var payload models.HivePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		if strings.TrimSpace(payload.Hive.Name) == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": map[string][]string{"name": {"can't be blank"}},
			})
			return
		}
		fb.nextID++
		payload.Hive.ID = strconv.Itoa(fb.nextID)
		fb.hives[payload.Hive.ID] = payload.Hive
		fb.order = append(fb.order, payload.Hive.ID)
		writeJSON(w, http.StatusCreated, payload)

	case id != "" && r.Method == http.MethodGet:
		h, exists := fb.hives[id]
		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "hive not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.HivesPayload{Hives: []models.Hive{h}})

	case id != "" && r.Method == http.MethodPut:
		if _, exists := fb.hives[id]; !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "hive not found"})
			return
		}
		var payload models.HivePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		payload.Hive.ID = id
		fb.hives[id] = payload.Hive
		writeJSON(w, http.StatusOK, payload)

	case id != "" && r.Method == http.MethodDelete:
		if _, exists := fb.hives[id]; !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "hive not found"})
			return
		}
		delete(fb.hives, id)
		for i, oid := range fb.order {
			if oid == id {
				fb.order = append(fb.order[:i], fb.order[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
