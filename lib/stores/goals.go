package stores

import (
	"context"

	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/oliverisaac/clarity/types"
)

// Goals keeps insertion order. Callers build goals with types.NewGoal, which
// refuses empty text.
type Goals struct {
	c collection[types.Goal]
}

func NewGoals(a *localstore.Adapter) *Goals {
	return &Goals{c: collection[types.Goal]{
		adapter: a,
		key:     KeyGoals,
		id:      func(g types.Goal) string { return g.ID },
	}}
}

func (g *Goals) Append(ctx context.Context, goal types.Goal) error {
	return g.c.append(ctx, goal)
}

func (g *Goals) Update(ctx context.Context, id string, fn func(*types.Goal)) (bool, error) {
	return g.c.update(ctx, id, func(goal *types.Goal) {
		fn(goal)
		goal.ID = id
	})
}

func (g *Goals) Toggle(ctx context.Context, id string) (bool, error) {
	return g.c.update(ctx, id, func(goal *types.Goal) {
		goal.Completed = !goal.Completed
	})
}

func (g *Goals) Remove(ctx context.Context, id string) (bool, error) {
	return g.c.remove(ctx, id)
}

func (g *Goals) List(ctx context.Context) ([]types.Goal, error) {
	return g.c.list(ctx)
}
