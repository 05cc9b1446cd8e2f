// The filestore package persists the ticket store as a single JSON snapshot file.
//
// The snapshot is read once when the store is created and written once when the
// store is closed. Writes go to a temporary file that is renamed over the previous
// snapshot, so a crash mid-write never truncates the last good snapshot.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/store"
)

// FileDriver implements the store.DataSource interface
// to persist the ticket store to a snapshot file on disk.
var _ store.DataSource = &FileDriver{}

const (
	snapshotFileMode = 0o644

	// Suffix of the temporary file the snapshot is written to before being renamed into place.
	tempFileSuffix = ".tmp"
)

// FileDriver reads and writes the store snapshot at a single file path.
type FileDriver struct {
	logger polylog.Logger
	path   string
}

// NewFileDriver returns a file data source for the snapshot at path.
//
// An empty path disables persistence: the store starts empty and
// nothing is written when it is closed.
func NewFileDriver(logger polylog.Logger, path string) *FileDriver {
	return &FileDriver{
		logger: logger.With("component", "snapshot_file_driver"),
		path:   path,
	}
}

/* ---------- DataSource Interface Implementation ---------- */

// FetchSnapshot reads the snapshot file.
//
// Returns:
//   - An empty snapshot if the path is empty or no file exists at it
//   - An error wrapping store.ErrMalformedSnapshot if the file cannot be parsed
func (d *FileDriver) FetchSnapshot() (*store.Snapshot, error) {
	if d.path == "" {
		d.logger.Warn().Msg("No snapshot file configured, state will not be persisted")
		return store.NewSnapshot(), nil
	}

	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.Info().Str("path", d.path).Msg("No snapshot file found, starting empty")
		return store.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %q: %w", d.path, err)
	}

	snapshot, err := store.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %q: %w", d.path, err)
	}

	d.logger.Info().Str("path", d.path).Int("bytes", len(data)).Msg("💾 Read snapshot file")

	return snapshot, nil
}

// SaveSnapshot writes the snapshot to a temporary file next to the
// snapshot path and renames it into place.
//
// On failure the temporary file is removed and any previous snapshot is left intact.
func (d *FileDriver) SaveSnapshot(snapshot *store.Snapshot) error {
	if d.path == "" {
		d.logger.Warn().Msg("No snapshot file configured, discarding state")
		return nil
	}

	data, err := store.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(d.logger, d.path, data); err != nil {
		return err
	}

	d.logger.Info().Str("path", d.path).Int("bytes", len(data)).Msg("💾 Wrote snapshot file")

	return nil
}

// Close is a no-op: the file is only open for the duration of each read or write.
func (d *FileDriver) Close() {}

// writeFileAtomic writes data to path via a temporary file and rename.
func writeFileAtomic(logger polylog.Logger, path string, data []byte) error {
	tempPath := path + tempFileSuffix

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, snapshotFileMode)
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}

	// Write, sync, close, in that order. Any failure removes the temporary file.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync temporary snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temporary snapshot file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file into place: %w", err)
	}

	// The snapshot is already in place, so a failed directory sync is only logged.
	if err := syncDir(filepath.Dir(path)); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to sync snapshot directory after rename")
	}

	return nil
}

// syncDir fsyncs a directory so that a rename inside it is durable.
func syncDir(dirPath string) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("failed to open directory %q: %w", dirPath, err)
	}

	if err := dir.Sync(); err != nil {
		dir.Close()
		return fmt.Errorf("failed to sync directory %q: %w", dirPath, err)
	}

	if err := dir.Close(); err != nil {
		return fmt.Errorf("failed to close directory %q: %w", dirPath, err)
	}

	return nil
}
