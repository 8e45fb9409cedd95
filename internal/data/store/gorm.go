package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/coco-backend/internal/domain"
)

// KVEntry is one key/value row; the study-set collection lives in a single
// row keyed by DefaultKey.
type KVEntry struct {
	Key       string         `gorm:"column:key;primaryKey;size:128" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;index" json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }

type GormPersister struct {
	db  *gorm.DB
	key string
}

func NewGormPersister(db *gorm.DB, key string) *GormPersister {
	if key == "" {
		key = DefaultKey
	}
	return &GormPersister{db: db, key: key}
}

func (p *GormPersister) Load(ctx context.Context) ([]domain.StudySet, error) {
	var row KVEntry
	err := p.db.WithContext(ctx).Where("key = ?", p.key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.key, err)
	}
	return Decode(row.Value)
}

func (p *GormPersister) Save(ctx context.Context, sets []domain.StudySet) error {
	raw, err := Encode(sets)
	if err != nil {
		return err
	}
	row := KVEntry{Key: p.key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", p.key, err)
	}
	return nil
}
