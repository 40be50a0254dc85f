// Package filesystem stores uploaded inputs under the data directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store writes uploads to <data_dir>/uploads.
type Store struct {
	dir   string
	newID func() string
}

// NewStore creates the uploads directory under dataDir.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Store{
		dir: dir,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}, nil
}

// Dir returns the uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data as <hex>_<name> and returns the path.
func (s *Store) Save(_ context.Context, filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, s.newID()+"_"+storedName(filename))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}

// Remove deletes path. Paths outside the uploads directory are refused.
func (s *Store) Remove(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove %q outside %s", path, s.dir)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// storedName keeps the base name with spaces replaced.
func storedName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return strings.ReplaceAll(name, " ", "_")
}
