package repositories

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/obs"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileModelStore keeps the model parameters as one JSON file.
type FileModelStore struct {
	Path string
}

func NewFileModelStore(path string) *FileModelStore {
	return &FileModelStore{Path: path}
}

func (s *FileModelStore) LoadParams(ctx context.Context) (_ *domain.ModelParams, err error) {
	defer obs.Time(ctx, "model.file.LoadParams")(&err)

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load params %q: %w", s.Path, domain.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load params %q: %w", s.Path, err)
	}
	params, err := decodeParams(data)
	if err != nil {
		return nil, fmt.Errorf("load params %q: %w", s.Path, err)
	}
	return params, nil
}

// SaveParams writes to a temporary file and renames it over the target so
// a reader never sees a partial file.
func (s *FileModelStore) SaveParams(ctx context.Context, params *domain.ModelParams) (err error) {
	defer obs.Time(ctx, "model.file.SaveParams")(&err)

	data, err := encodeParams(params)
	if err != nil {
		return fmt.Errorf("save params %q: %w", s.Path, err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save params: create dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("save params: create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save params: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save params: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("save params: rename to %q: %w", s.Path, err)
	}
	return nil
}
