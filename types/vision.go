package types

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	VisionBoardCapacity = 9
	MaxRotation         = 3
)

// VisionItem is one pinned photo. Rotation is a cosmetic tilt picked once
// when the photo is pinned.
type VisionItem struct {
	ID        string `json:"id"`
	ImageURL  string `json:"imageUrl"`
	Caption   string `json:"caption"`
	DateAdded string `json:"dateAdded"`
	Rotation  int    `json:"rotation"`
}

func NewVisionItem(imageURL string, now time.Time) VisionItem {
	return VisionItem{
		ID:        uuid.NewString(),
		ImageURL:  imageURL,
		DateAdded: now.UTC().Format(time.RFC3339Nano),
		Rotation:  rand.IntN(2*MaxRotation+1) - MaxRotation,
	}
}
