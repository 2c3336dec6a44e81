package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deusflow/weeklydigest/internal/edition"
)

const (
	currentFile = "edition.json"
	archiveDir  = "archive"
	indexFile   = "archive_index.json"
)

// FileStore keeps editions as JSON files under a data directory:
//
//	<dir>/edition.json
//	<dir>/archive/<YYYY-Www>.json
//	<dir>/archive_index.json
type FileStore struct {
	dir string
}

// NewFileStore creates dir and its archive subdirectory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, archiveDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory.
func (fs *FileStore) Dir() string { return fs.dir }

func (fs *FileStore) SaveCurrent(_ context.Context, ed edition.Edition) error {
	return fs.writeJSON(filepath.Join(fs.dir, currentFile), ed)
}

func (fs *FileStore) SaveArchive(_ context.Context, id string, ed edition.Edition) error {
	return fs.writeJSON(filepath.Join(fs.dir, archiveDir, edition.ArchiveFile(id)), ed)
}

// ListArchive returns the names of the JSON files in the archive directory.
func (fs *FileStore) ListArchive(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(fs.dir, archiveDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (fs *FileStore) SaveIndex(_ context.Context, idx edition.Index) error {
	return fs.writeJSON(filepath.Join(fs.dir, indexFile), idx)
}

func (fs *FileStore) Close() error { return nil }

// writeJSON replaces path atomically: readers see either the old or the new
// document.
func (fs *FileStore) writeJSON(path string, v any) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
