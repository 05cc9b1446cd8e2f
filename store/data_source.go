package store

//go:generate mockgen -source=data_source.go -destination=mock_data_source.go -package=store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedSnapshot is returned when a persisted snapshot exists but cannot be parsed.
	// The store must not start from a snapshot it cannot read.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrSnapshotWrite is returned when the final snapshot cannot be persisted on close.
	ErrSnapshotWrite = errors.New("snapshot write failed")
)

// DataSource defines the interface for the durable backing of the store.
//
// Satisfied by:
//   - filestore.FileDriver
//   - tracker.TrackerPostgresDriver
type DataSource interface {
	// FetchSnapshot loads the last persisted snapshot.
	// It returns an empty snapshot if nothing has been persisted yet.
	FetchSnapshot() (*Snapshot, error)

	// SaveSnapshot persists the full snapshot, replacing any previous one.
	SaveSnapshot(snapshot *Snapshot) error

	// Close closes the data source and cleans up any resources.
	Close()
}

// Snapshot is the serialized form of the whole store.
// Each collection is keyed by entity ID.
type Snapshot struct {
	Users   map[UserID]User     `json:"users"`
	Teams   map[TeamID]Team     `json:"teams"`
	Tickets map[TicketID]Ticket `json:"tickets"`
}

// NewSnapshot returns a snapshot with three empty collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:   make(map[UserID]User),
		Teams:   make(map[TeamID]Team),
		Tickets: make(map[TicketID]Ticket),
	}
}

// snapshotDocument mirrors Snapshot with pointer fields so that
// a missing or null collection can be told apart from an empty one.
type snapshotDocument struct {
	Users   *map[UserID]User     `json:"users"`
	Teams   *map[TeamID]Team     `json:"teams"`
	Tickets *map[TicketID]Ticket `json:"tickets"`
}

// UnmarshalSnapshot parses a persisted snapshot document.
//
// The whole document must parse, contain all three collections and give every
// ticket a valid status, otherwise an error wrapping ErrMalformedSnapshot is returned.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	switch {
	case doc.Users == nil:
		return nil, fmt.Errorf("%w: missing users collection", ErrMalformedSnapshot)
	case doc.Teams == nil:
		return nil, fmt.Errorf("%w: missing teams collection", ErrMalformedSnapshot)
	case doc.Tickets == nil:
		return nil, fmt.Errorf("%w: missing tickets collection", ErrMalformedSnapshot)
	}

	// A ticket without a status key never runs TicketStatus.UnmarshalJSON,
	// so every status is checked again once decoded.
	for id, ticket := range *doc.Tickets {
		if _, err := ParseTicketStatus(string(ticket.Status)); err != nil {
			return nil, fmt.Errorf("%w: ticket %q: %v", ErrMalformedSnapshot, id, err)
		}
	}

	return &Snapshot{
		Users:   *doc.Users,
		Teams:   *doc.Teams,
		Tickets: *doc.Tickets,
	}, nil
}

// MarshalSnapshot serializes a snapshot into its persisted document form.
func MarshalSnapshot(snapshot *Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}
