package stores

import (
	"context"

	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/oliverisaac/clarity/types"
)

// Journal lists entries newest first.
type Journal struct {
	c collection[types.JournalEntry]
}

func NewJournal(a *localstore.Adapter) *Journal {
	return &Journal{c: collection[types.JournalEntry]{
		adapter: a,
		key:     KeyJournal,
		id:      func(e types.JournalEntry) string { return e.ID },
		prepend: true,
	}}
}

func (j *Journal) Append(ctx context.Context, entry types.JournalEntry) error {
	return j.c.append(ctx, entry)
}

// Update can only annotate an entry: its id, content and date never change.
func (j *Journal) Update(ctx context.Context, id string, fn func(*types.JournalEntry)) (bool, error) {
	return j.c.update(ctx, id, func(e *types.JournalEntry) {
		orig := *e
		fn(e)
		e.ID, e.Content, e.Date = orig.ID, orig.Content, orig.Date
	})
}

func (j *Journal) Remove(ctx context.Context, id string) (bool, error) {
	return j.c.remove(ctx, id)
}

func (j *Journal) List(ctx context.Context) ([]types.JournalEntry, error) {
	return j.c.list(ctx)
}
