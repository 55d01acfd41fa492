// Package artifact stores retrieved invoice documents on the local
// filesystem under their deterministic target names.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Store is a directory-backed artifact store.
type Store struct {
	dir string
}

// NewStore creates an artifact store rooted at dir, creating it when
// absent. If dir is empty, defaults to ~/.hoadon/downloads.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".hoadon", "downloads")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Exists reports whether the named artifact is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Write stores the artifact. Data lands in a temp file first and is
// renamed into place so a crash never leaves a half-written artifact
// under the target name.
func (s *Store) Write(name string, data []byte) error {
	target := s.Path(name)

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing artifact: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming artifact into place: %w", err)
	}
	return nil
}

// Delete removes the artifact. Absence is not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	return nil
}

// Path returns the absolute location of the named artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}
