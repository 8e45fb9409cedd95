package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/coco-backend/internal/domain"
)

// DefaultKey is the single key under which the collection is persisted.
const DefaultKey = "coco_study_sets"

// Persister saves and restores the whole study-set collection as one JSON
// array under a single key.
type Persister interface {
	Load(ctx context.Context) ([]domain.StudySet, error)
	Save(ctx context.Context, sets []domain.StudySet) error
}

type NopPersister struct{}

func (NopPersister) Load(context.Context) ([]domain.StudySet, error) { return nil, nil }
func (NopPersister) Save(context.Context, []domain.StudySet) error   { return nil }

// Encode renders sets as a JSON array; createdAt values are RFC 3339.
func Encode(sets []domain.StudySet) ([]byte, error) {
	if sets == nil {
		sets = []domain.StudySet{}
	}
	b, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("encode study sets: %w", err)
	}
	return b, nil
}

// Decode parses a persisted payload. An empty payload is an empty collection.
func Decode(raw []byte) ([]domain.StudySet, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var sets []domain.StudySet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, fmt.Errorf("decode study sets: %w", err)
	}
	return sets, nil
}
