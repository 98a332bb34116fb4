// Package stores owns the user's collections: journal entries, goals, the
// vision board and the daily affirmation cache. Every mutation reloads the
// persisted collection, changes it in memory and writes the whole thing back.
package stores

import (
	"context"
	"slices"

	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/pkg/errors"
)

const (
	KeyJournal         = "journal_entries"
	KeyGoals           = "goals"
	KeyVisionBoard     = "vision_board"
	KeyAffirmation     = "daily_affirmation"
	KeyAffirmationDate = "daily_affirmation_date"
)

var ErrCapacityExceeded = errors.New("collection is full")

type collection[T any] struct {
	adapter  *localstore.Adapter
	key      string
	id       func(T) string
	prepend  bool
	capacity int // 0 means unbounded
}

func (c collection[T]) list(ctx context.Context) ([]T, error) {
	return localstore.Load[T](ctx, c.adapter, c.key)
}

func (c collection[T]) append(ctx context.Context, item T) error {
	_, err := localstore.Mutate(ctx, c.adapter, c.key, func(items []T) ([]T, error) {
		if c.capacity > 0 && len(items) >= c.capacity {
			return nil, ErrCapacityExceeded
		}
		if c.prepend {
			return append([]T{item}, items...), nil
		}
		return append(items, item), nil
	})
	return err
}

// update applies fn to the item with the given id. It reports whether the id
// was found; an unknown id writes nothing.
func (c collection[T]) update(ctx context.Context, id string, fn func(*T)) (bool, error) {
	found := false
	_, err := localstore.Mutate(ctx, c.adapter, c.key, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, func(it T) bool { return c.id(it) == id })
		if i < 0 {
			return nil, errNoop
		}
		found = true
		fn(&items[i])
		return items, nil
	})
	if errors.Is(err, errNoop) {
		return false, nil
	}
	return found, err
}

func (c collection[T]) remove(ctx context.Context, id string) (bool, error) {
	found := false
	_, err := localstore.Mutate(ctx, c.adapter, c.key, func(items []T) ([]T, error) {
		kept := slices.DeleteFunc(items, func(it T) bool { return c.id(it) == id })
		if len(kept) == len(items) {
			return nil, errNoop
		}
		found = true
		return kept, nil
	})
	if errors.Is(err, errNoop) {
		return false, nil
	}
	return found, err
}

// errNoop aborts a Mutate without writing.
var errNoop = errors.New("nothing to change")
