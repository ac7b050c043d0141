// Package snapshot persists and loads the metrics snapshot on disk. The
// snapshot file is the only interface between the collector and renderer
// stages.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// FileName is the well-known name of the current snapshot inside the data
// directory.
const FileName = "metrics.json"

// Store reads and writes snapshots under one data directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first save.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Path returns the location of the current snapshot file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Save atomically replaces the current snapshot: the JSON document is
// written to a temporary file in the same directory and renamed into
// place, so a crash mid-write never corrupts the previous good snapshot.
// A dated history copy is retained next to it.
func (s *Store) Save(snap *domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("refusing to persist snapshot: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	s.logger.Info("snapshot saved", zap.String("path", s.Path()))

	// The history copy is a convenience, but a failure here still fails the
	// run loudly rather than silently dropping the day's record.
	historyPath := filepath.Join(s.dir,
		fmt.Sprintf("metrics-%s.json", snap.GeneratedAt.UTC().Format("2006-01-02")))
	if err := os.WriteFile(historyPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history copy: %w", err)
	}
	s.logger.Debug("history copy saved", zap.String("path", historyPath))
	return nil
}

// Load reads and validates the current snapshot.
func (s *Store) Load() (*domain.Snapshot, error) {
	return LoadFile(s.Path())
}

// LoadFile reads and validates a snapshot from an arbitrary path. Any
// problem - an absent file, bad JSON, missing required fields - surfaces
// as a MalformedSnapshotError.
func LoadFile(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.MalformedSnapshotError{Path: path, Reason: "snapshot file is not readable", Err: err}
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &domain.MalformedSnapshotError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if err := snap.Validate(); err != nil {
		var malformed *domain.MalformedSnapshotError
		if errors.As(err, &malformed) {
			malformed.Path = path
			return nil, malformed
		}
		return nil, err
	}
	return &snap, nil
}
