package types

import (
	"time"

	"github.com/google/uuid"
)

type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
	MoodAnxious Mood = "anxious"
	MoodHopeful Mood = "hopeful"
)

func (m Mood) Valid() bool {
	switch m {
	case "", MoodHappy, MoodNeutral, MoodSad, MoodAnxious, MoodHopeful:
		return true
	}
	return false
}

// JournalEntry is never edited after creation; it can only be removed.
type JournalEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Mood    Mood   `json:"mood,omitempty"`
}

func NewJournalEntry(content string, mood Mood, now time.Time) JournalEntry {
	return JournalEntry{
		ID:      uuid.NewString(),
		Content: content,
		Date:    now.UTC().Format(time.RFC3339Nano),
		Mood:    mood,
	}
}
