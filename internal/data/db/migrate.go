package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/coco-backend/internal/data/store"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&store.KVEntry{},
	)
}
