package models

// RecordState is the client-side lifecycle of a hive record.
type RecordState string

const (
	RecordStateNew       RecordState = "new"       // created locally, never saved
	RecordStateSaving    RecordState = "saving"    // save request in flight
	RecordStatePersisted RecordState = "persisted" // confirmed by the server
	RecordStateDirty     RecordState = "dirty"     // persisted, then changed locally
	RecordStateError     RecordState = "error"     // last save failed
	RecordStateDeleted   RecordState = "deleted"
)

// IsCommitted returns true once the server has acknowledged the record.
func (s RecordState) IsCommitted() bool {
	return s == RecordStatePersisted || s == RecordStateDirty
}

// Hive represents a named, completable hive record.
type Hive struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted"`

	ClientID string      `json:"-"` // Local identity, stable across saves
	State    RecordState `json:"-"`
}

// IsNew returns true if the server has not assigned an ID yet.
func (h Hive) IsNew() bool {
	return h.ID == ""
}

// HivePayload is the envelope for a single hive.
type HivePayload struct {
	Hive Hive `json:"hive"`
}

// HivesPayload is the envelope for a list of hives.
type HivesPayload struct {
	Hives []Hive `json:"hives"`
}
