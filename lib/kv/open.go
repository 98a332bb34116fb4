package kv

import (
	"context"
	"fmt"

	"github.com/oliverisaac/clarity/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Open picks the backend named by cfg.Storage. db is only used by the sqlite
// backend.
func Open(ctx context.Context, cfg types.Config, db *gorm.DB) (Store, error) {
	logrus.Infof("Using %s key/value storage", cfg.Storage)
	switch cfg.Storage {
	case types.StorageSQLite, "":
		return NewSQL(db)
	case types.StorageBolt:
		return NewBolt(cfg.BoltPath)
	case types.StorageRedis:
		return NewRedis(ctx, cfg.RedisURL)
	case types.StorageMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}
