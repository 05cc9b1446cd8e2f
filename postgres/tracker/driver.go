package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// TrackerPostgresDriver implements the store.DataSource interface
// to persist the ticket store snapshot in a Postgres database.
var _ store.DataSource = &TrackerPostgresDriver{}

// TrackerPostgresDriver keeps the whole store snapshot as a single JSONB row.
type TrackerPostgresDriver struct {
	logger polylog.Logger
	db     *pgxpool.Pool
}

/* ---------- Postgres Connection Funcs ---------- */

// Regular expression to match a valid PostgreSQL connection string
var postgresConnectionStringRegex = regexp.MustCompile(`^postgres(?:ql)?:\/\/[^:]+:[^@]+@[^:]+:\d+\/[^?]+(?:\?.+)?$`)

const queryTimeout = 5 * time.Second

const (
	// The table holds at most one row: the CHECK pins the id to 1.
	createSnapshotTableQuery = `
CREATE TABLE IF NOT EXISTS tracker_snapshot (
	id       SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	document JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	selectSnapshotQuery = `SELECT document FROM tracker_snapshot WHERE id = 1`

	upsertSnapshotQuery = `
INSERT INTO tracker_snapshot (id, document, saved_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE
SET document = EXCLUDED.document, saved_at = EXCLUDED.saved_at`
)

/*
NewTrackerPostgresDriver returns a PostgreSQL data source that implements the store.DataSource interface.

The data source connects to a PostgreSQL database and:
1. Verifies the connection
2. Creates the snapshot table if it does not exist yet
*/
func NewTrackerPostgresDriver(
	logger polylog.Logger,
	connectionString string,
) (*TrackerPostgresDriver, error) {
	if !isValidPostgresConnectionString(connectionString) {
		return nil, fmt.Errorf("invalid postgres connection string")
	}

	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	if _, err := pool.Exec(ctx, createSnapshotTableQuery); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &TrackerPostgresDriver{
		logger: logger.With("component", "snapshot_postgres_driver"),
		db:     pool,
	}, nil
}

// isValidPostgresConnectionString checks if a string is a valid PostgreSQL connection string.
func isValidPostgresConnectionString(s string) bool {
	return postgresConnectionStringRegex.MatchString(s)
}

/* ---------- DataSource Interface Implementation ---------- */

// FetchSnapshot loads the snapshot row, or an empty snapshot if none was saved yet.
func (d *TrackerPostgresDriver) FetchSnapshot() (*store.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	d.logger.Info().Msg("💾 Executing select snapshot query...")

	var document []byte
	err := d.db.QueryRow(ctx, selectSnapshotQuery).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		d.logger.Info().Msg("No snapshot row found, starting empty")
		return store.NewSnapshot(), nil
	}
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to fetch snapshot from database")
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	snapshot, err := store.UnmarshalSnapshot(document)
	if err != nil {
		return nil, err
	}

	d.logger.Info().
		Int("num_users", len(snapshot.Users)).
		Int("num_teams", len(snapshot.Teams)).
		Int("num_tickets", len(snapshot.Tickets)).
		Msg("✅ Successfully fetched snapshot from Postgres")

	return snapshot, nil
}

// SaveSnapshot replaces the snapshot row in a single statement.
func (d *TrackerPostgresDriver) SaveSnapshot(snapshot *store.Snapshot) error {
	document, err := store.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := d.db.Exec(ctx, upsertSnapshotQuery, document); err != nil {
		d.logger.Error().Err(err).Msg("failed to save snapshot to database")
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	d.logger.Info().Int("bytes", len(document)).Msg("✅ Successfully saved snapshot to Postgres")

	return nil
}

// Close closes the connection pool.
func (d *TrackerPostgresDriver) Close() {
	d.db.Close()
}
