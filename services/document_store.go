package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DocumentStore is a durable directory of uploaded source documents.
// Filenames are the unique key; saving an existing name overwrites it.
type DocumentStore struct {
	dir string
}

func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs directory: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Save persists the uploaded bytes under filename. The file is fully
// written and synced before Save returns, so a following index rebuild
// always sees the complete document.
func (s *DocumentStore) Save(filename string, r io.Reader) error {
	// Strip any path components from the client-supplied name.
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid filename %q", filename)
	}

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create document file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return fmt.Errorf("sync document: %w", err)
	}
	return dst.Close()
}

// List enumerates the filenames currently in the store, sorted.
func (s *DocumentStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read docs directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Path returns the storage path of a document by name.
func (s *DocumentStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}
