// Package storage persists editions: the current snapshot, one archive entry
// per ISO week and the archive index.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deusflow/weeklydigest/internal/config"
	"github.com/deusflow/weeklydigest/internal/edition"
)

// Store is a persistence backend for editions. Implementations assume a
// single writer.
type Store interface {
	// SaveCurrent overwrites the current edition.
	SaveCurrent(ctx context.Context, ed edition.Edition) error
	// SaveArchive writes or replaces the archive entry for id.
	SaveArchive(ctx context.Context, id string, ed edition.Edition) error
	// ListArchive returns the archive file names, in no particular order.
	ListArchive(ctx context.Context) ([]string, error)
	// SaveIndex overwrites the archive index.
	SaveIndex(ctx context.Context, idx edition.Index) error
	Close() error
}

// Publish saves ed as the current edition and as the archive entry for the
// ISO week of now, then rebuilds the archive index. The index is returned.
func Publish(ctx context.Context, s Store, ed edition.Edition, now time.Time) (edition.Index, error) {
	if err := s.SaveCurrent(ctx, ed); err != nil {
		return edition.Index{}, fmt.Errorf("save current edition: %w", err)
	}

	id := edition.ArchiveID(now)
	if err := s.SaveArchive(ctx, id, ed); err != nil {
		return edition.Index{}, fmt.Errorf("save archive %s: %w", id, err)
	}

	files, err := s.ListArchive(ctx)
	if err != nil {
		return edition.Index{}, fmt.Errorf("list archive: %w", err)
	}

	idx := edition.NewIndex(files)
	if err := s.SaveIndex(ctx, idx); err != nil {
		return edition.Index{}, fmt.Errorf("save archive index: %w", err)
	}
	return idx, nil
}

// Open returns the backend selected by cfg.StoreBackend. runID is recorded
// by backends that keep per-run metadata.
func Open(cfg *config.Config, runID string) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile, "":
		return NewFileStore(cfg.DataDir)
	case config.BackendSQLite:
		return NewSQLite(cfg.SQLitePath, runID)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// encode renders v as indented UTF-8 JSON without HTML escaping.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
