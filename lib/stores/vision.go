package stores

import (
	"context"

	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/oliverisaac/clarity/types"
)

type BoardState string

const (
	BoardIdle      BoardState = "idle"
	BoardUploading BoardState = "uploading"
	BoardFull      BoardState = "full"
)

// StateOf is the board's upload affordance for n pinned items.
func StateOf(n int, uploading bool) BoardState {
	switch {
	case n >= types.VisionBoardCapacity:
		return BoardFull
	case uploading:
		return BoardUploading
	}
	return BoardIdle
}

// VisionBoard holds at most types.VisionBoardCapacity items in the order they
// were pinned.
type VisionBoard struct {
	c collection[types.VisionItem]
}

func NewVisionBoard(a *localstore.Adapter) *VisionBoard {
	return &VisionBoard{c: collection[types.VisionItem]{
		adapter:  a,
		key:      KeyVisionBoard,
		id:       func(v types.VisionItem) string { return v.ID },
		capacity: types.VisionBoardCapacity,
	}}
}

// Append returns ErrCapacityExceeded and leaves the board untouched when it is
// already full.
func (b *VisionBoard) Append(ctx context.Context, item types.VisionItem) error {
	return b.c.append(ctx, item)
}

// Update keeps the item's id, pin date and rotation whatever fn does.
func (b *VisionBoard) Update(ctx context.Context, id string, fn func(*types.VisionItem)) (bool, error) {
	return b.c.update(ctx, id, func(item *types.VisionItem) {
		orig := *item
		fn(item)
		item.ID, item.DateAdded, item.Rotation = orig.ID, orig.DateAdded, orig.Rotation
	})
}

func (b *VisionBoard) SetCaption(ctx context.Context, id, caption string) (bool, error) {
	return b.Update(ctx, id, func(item *types.VisionItem) {
		item.Caption = caption
	})
}

func (b *VisionBoard) Remove(ctx context.Context, id string) (bool, error) {
	return b.c.remove(ctx, id)
}

func (b *VisionBoard) List(ctx context.Context) ([]types.VisionItem, error) {
	return b.c.list(ctx)
}

func (b *VisionBoard) State(ctx context.Context) (BoardState, error) {
	items, err := b.c.list(ctx)
	if err != nil {
		return "", err
	}
	return StateOf(len(items), false), nil
}
