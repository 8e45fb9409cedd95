package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yungbote/coco-backend/internal/domain"
)

// FilePersister keeps the collection in a single JSON file. Writes go to a
// temp file in the same directory and are renamed into place.
type FilePersister struct {
	Path string
}

func NewFilePersister(dir, key string) *FilePersister {
	if key == "" {
		key = DefaultKey
	}
	return &FilePersister{Path: filepath.Join(dir, key+".json")}
}

func (p *FilePersister) Load(ctx context.Context) ([]domain.StudySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.Path, err)
	}
	return Decode(raw)
}

func (p *FilePersister) Save(ctx context.Context, sets []domain.StudySet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := Encode(sets)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(p.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, p.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", p.Path, err)
	}
	return nil
}
