package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/metrics"
)

// Store is an in-memory store for users, teams and tickets.
//
// Responsibilities:
//   - Maintain three independent, thread-safe maps keyed by entity ID
//   - Load the initial state from a DataSource snapshot
//   - Flush the full state back to the DataSource exactly once, on Close
//
// Each collection has its own lock. No method ever holds more than one
// collection lock at a time: cross-collection reads copy what they need
// out of one collection, release its lock, then move on to the next.
type Store struct {
	logger polylog.Logger

	// Durable backing of the store. Nil for a purely in-memory store.
	dataSource DataSource

	// In-memory map of users (userID -> User)
	users   map[UserID]User
	usersMu sync.RWMutex

	// In-memory map of teams (teamID -> Team)
	teams   map[TeamID]Team
	teamsMu sync.RWMutex

	// In-memory map of tickets (ticketID -> Ticket)
	tickets   map[TicketID]Ticket
	ticketsMu sync.RWMutex

	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a new in-memory store.
//
// Steps:
//   - Fetches the last persisted snapshot from the data source
//   - Populates the three collections from it, keyed by the snapshot's own keys
//   - Returns the initialized store or an error if the snapshot could not be loaded
//
// A nil data source yields an empty store that never persists anything.
func NewStore(
	logger polylog.Logger,
	dataSource DataSource,
) (*Store, error) {
	store := &Store{
		logger:     logger.With("component", "ticket_data_store"),
		dataSource: dataSource,
		users:      make(map[UserID]User),
		teams:      make(map[TeamID]Team),
		tickets:    make(map[TicketID]Ticket),
	}

	if err := store.initializeStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize ticket store: %w", err)
	}

	return store, nil
}

// initializeStore requests the last snapshot from the data source to populate the store.
func (s *Store) initializeStore() error {
	if s.dataSource == nil {
		s.logger.Info().Msg("No data source configured, starting with an empty in-memory store")
		return nil
	}

	s.logger.Info().Msg("Fetching snapshot from data source ...")

	snapshot, err := s.dataSource.FetchSnapshot()
	if err != nil {
		return fmt.Errorf("failed to get snapshot from data source: %w", err)
	}

	// The snapshot's map key is trusted over the ID embedded in each record,
	// so lookups behave exactly as they did when the snapshot was written.
	s.usersMu.Lock()
	for id, user := range snapshot.Users {
		s.users[id] = user
	}
	metrics.UpdateStoreSize(metrics.StoreTypeUsers, float64(len(s.users)))
	s.usersMu.Unlock()

	s.teamsMu.Lock()
	for id, team := range snapshot.Teams {
		s.teams[id] = team
	}
	metrics.UpdateStoreSize(metrics.StoreTypeTeams, float64(len(s.teams)))
	s.teamsMu.Unlock()

	s.ticketsMu.Lock()
	for id, ticket := range snapshot.Tickets {
		s.tickets[id] = ticket
	}
	metrics.UpdateStoreSize(metrics.StoreTypeTickets, float64(len(s.tickets)))
	s.ticketsMu.Unlock()

	s.logger.Info().
		Int("users", len(snapshot.Users)).
		Int("teams", len(snapshot.Teams)).
		Int("tickets", len(snapshot.Tickets)).
		Msg("Successfully loaded snapshot from data source")

	return nil
}

// Close flushes the full store to the data source and closes it.
//
// The flush runs exactly once; later calls return the result of the first.
// The store keeps serving reads and writes after Close, but nothing written
// afterwards is persisted.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.flush()
		if s.dataSource != nil {
			s.dataSource.Close()
		}
	})
	return s.closeErr
}

// flush copies each collection out under its own lock, in turn,
// and hands the assembled snapshot to the data source.
func (s *Store) flush() error {
	if s.dataSource == nil {
		s.logger.Info().Msg("No data source configured, discarding in-memory state")
		return nil
	}

	snapshot := s.Snapshot()

	startTime := time.Now()
	err := s.dataSource.SaveSnapshot(snapshot)
	duration := time.Since(startTime)

	if err != nil {
		metrics.RecordSnapshotFlush(metrics.FlushStatusError, duration.Seconds())
		s.logger.Error().Err(err).Msg("Failed to flush snapshot to data source")
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}

	metrics.RecordSnapshotFlush(metrics.FlushStatusSuccess, duration.Seconds())
	s.logger.Info().
		Int("users", len(snapshot.Users)).
		Int("teams", len(snapshot.Teams)).
		Int("tickets", len(snapshot.Tickets)).
		Dur("flush_duration", duration).
		Msg("Successfully flushed snapshot to data source")

	return nil
}

// Snapshot returns a copy of the current state of all three collections.
func (s *Store) Snapshot() *Snapshot {
	snapshot := &Snapshot{}

	s.usersMu.RLock()
	snapshot.Users = make(map[UserID]User, len(s.users))
	for id, user := range s.users {
		snapshot.Users[id] = user
	}
	s.usersMu.RUnlock()

	s.teamsMu.RLock()
	snapshot.Teams = make(map[TeamID]Team, len(s.teams))
	for id, team := range s.teams {
		snapshot.Teams[id] = team
	}
	s.teamsMu.RUnlock()

	s.ticketsMu.RLock()
	snapshot.Tickets = make(map[TicketID]Ticket, len(s.tickets))
	for id, ticket := range s.tickets {
		snapshot.Tickets[id] = ticket
	}
	s.ticketsMu.RUnlock()

	return snapshot
}

/* ---------- Users ---------- */

// Users returns every user in the store, in no particular order.
func (s *Store) Users() []User {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users
}

// GetUser returns a User from the store and a bool indicating if it exists in the store.
func (s *Store) GetUser(userID UserID) (User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	user, ok := s.users[userID]
	return user, ok
}

// CreateUser inserts the user, replacing any existing user with the same ID.
func (s *Store) CreateUser(user User) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	s.users[user.ID] = user
	metrics.UpdateStoreSize(metrics.StoreTypeUsers, float64(len(s.users)))
}

// DeleteUser removes a user. Deleting an absent user is a no-op.
//
// Tickets referencing the user are left untouched.
// Not exposed through the HTTP API.
func (s *Store) DeleteUser(userID UserID) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	delete(s.users, userID)
	metrics.UpdateStoreSize(metrics.StoreTypeUsers, float64(len(s.users)))
}

/* ---------- Teams ---------- */

// Teams returns every team in the store, in no particular order.
func (s *Store) Teams() []Team {
	s.teamsMu.RLock()
	defer s.teamsMu.RUnlock()

	teams := make([]Team, 0, len(s.teams))
	for _, team := range s.teams {
		teams = append(teams, team)
	}
	return teams
}

// GetTeam returns a Team from the store and a bool indicating if it exists in the store.
func (s *Store) GetTeam(teamID TeamID) (Team, bool) {
	s.teamsMu.RLock()
	defer s.teamsMu.RUnlock()

	team, ok := s.teams[teamID]
	return team, ok
}

// CreateTeam inserts the team, replacing any existing team with the same ID.
func (s *Store) CreateTeam(team Team) {
	s.teamsMu.Lock()
	defer s.teamsMu.Unlock()

	s.teams[team.ID] = team
	metrics.UpdateStoreSize(metrics.StoreTypeTeams, float64(len(s.teams)))
}

// teamIDsNamed returns the IDs of all teams whose name is exactly name.
func (s *Store) teamIDsNamed(name string) map[TeamID]struct{} {
	s.teamsMu.RLock()
	defer s.teamsMu.RUnlock()

	teamIDs := make(map[TeamID]struct{})
	for id, team := range s.teams {
		if team.Name == name {
			teamIDs[id] = struct{}{}
		}
	}
	return teamIDs
}
