// Package localstore persists each feature collection as one JSON document
// per key. Collections are always read and written whole; there is no merge
// and no diffing. Calls on the same key inside this process are serialized,
// but two processes sharing a backend are not coordinated and the last
// writer wins.
package localstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oliverisaac/clarity/lib/kv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	kv    kv.Store
	locks sync.Map // scoped key -> *sync.Mutex
}

func New(store kv.Store) *Storage {
	return &Storage{kv: store}
}

// Scope returns the adapter for one owner's keys.
func (s *Storage) Scope(owner string) *Adapter {
	return &Adapter{storage: s, owner: owner}
}

func (s *Storage) lock(key string) func() {
	m, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type Adapter struct {
	storage *Storage
	owner   string
}

func (a *Adapter) key(k string) string {
	if a.owner == "" {
		return k
	}
	return a.owner + "/" + k
}

// Get reads a raw string value. A missing key is "", nil.
func (a *Adapter) Get(ctx context.Context, key string) (string, error) {
	v, err := a.storage.kv.Get(ctx, a.key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	return a.storage.kv.Set(ctx, a.key(key), []byte(value))
}

// Load returns the collection stored under key. A missing key, malformed JSON
// or a document of the wrong shape all come back as an empty collection; only
// a failing backend is reported.
func Load[T any](ctx context.Context, a *Adapter, key string) ([]T, error) {
	raw, err := a.storage.kv.Get(ctx, a.key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", key)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logrus.WithField("key", a.key(key)).Warn(errors.Wrap(err, "stored collection is corrupt, treating as empty"))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole collection stored under key. An empty collection
// drops the key, which Load reads back as empty.
func Save[T any](ctx context.Context, a *Adapter, key string, items []T) error {
	if len(items) == 0 {
		return errors.Wrapf(a.storage.kv.Delete(ctx, a.key(key)), "clearing %s", key)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return errors.Wrapf(a.storage.kv.Set(ctx, a.key(key), raw), "saving %s", key)
}

// Mutate loads the collection, hands it to fn and saves what fn returns. The
// whole sequence holds the key's lock. If fn fails nothing is written.
func Mutate[T any](ctx context.Context, a *Adapter, key string, fn func([]T) ([]T, error)) ([]T, error) {
	unlock := a.storage.lock(a.key(key))
	defer unlock()

	items, err := Load[T](ctx, a, key)
	if err != nil {
		return nil, err
	}
	items, err = fn(items)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, a, key, items); err != nil {
		return nil, err
	}
	return items, nil
}
