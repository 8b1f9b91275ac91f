package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/ports"
)

// JSONStore keeps the document in a single file on local disk
type JSONStore struct {
	path string
}

// NewJSONStore creates a file-backed document store
func NewJSONStore(path string) ports.DocumentStore {
	return &JSONStore{path: path}
}

// Path returns the backing file location
func (s *JSONStore) Path() string {
	return s.path
}

// EnsureInitialized writes the seed document if the file does not exist yet
func (s *JSONStore) EnsureInitialized(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return entities.NewStorageError("init", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return entities.NewStorageError("init", fmt.Errorf("create data dir: %w", err))
	}

	if err := s.write(entities.SeedDocument()); err != nil {
		return entities.NewStorageError("init", err)
	}
	return nil
}

func (s *JSONStore) Load(ctx context.Context) (*entities.Document, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, entities.NewStorageError("load", err)
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, entities.NewStorageError("load", fmt.Errorf("%s: %w", s.path, err))
	}
	return doc, nil
}

func (s *JSONStore) Save(ctx context.Context, doc *entities.Document) error {
	if err := s.write(doc); err != nil {
		return entities.NewStorageError("save", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// write replaces the file through a rename so a failed write never leaves a
// truncated document behind
func (s *JSONStore) write(doc *entities.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
