package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coco-backend/internal/domain"
)

type RedisPersister struct {
	rdb goredis.UniversalClient
	key string
}

func NewRedisPersister(rdb goredis.UniversalClient, key string) *RedisPersister {
	if key == "" {
		key = DefaultKey
	}
	return &RedisPersister{rdb: rdb, key: key}
}

func (p *RedisPersister) Load(ctx context.Context) ([]domain.StudySet, error) {
	raw, err := p.rdb.Get(ctx, p.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", p.key, err)
	}
	return Decode(raw)
}

func (p *RedisPersister) Save(ctx context.Context, sets []domain.StudySet) error {
	raw, err := Encode(sets)
	if err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, p.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.key, err)
	}
	return nil
}
