package kv

import (
	"context"

	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL keeps every key as one row of the application database.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&types.KVRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrating kv table")
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var rec types.KVRecord
	err := s.db.WithContext(ctx).First(&rec, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading key %q", key)
	}
	return rec.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	rec := types.KVRecord{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	return errors.Wrapf(err, "writing key %q", key)
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&types.KVRecord{}, "`key` = ?", key).Error
	return errors.Wrapf(err, "deleting key %q", key)
}

// Close is a no-op, the database handle belongs to the caller.
func (s *SQL) Close() error {
	return nil
}
