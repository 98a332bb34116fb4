package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrEmptyGoal = errors.New("a goal needs some text")

const DueDateLayout = "2006-01-02"

type Timeline int

const (
	TimelineUnset Timeline = iota
	TimelineNone
	TimelineDated
)

// DueDate distinguishes a goal nobody gave a date yet from one explicitly
// marked "no timeline". On the wire an absent field is unset, null is no
// timeline and a YYYY-MM-DD string is dated.
type DueDate struct {
	Timeline Timeline
	Date     string
}

func NoTimeline() DueDate {
	return DueDate{Timeline: TimelineNone}
}

func DueOn(date string) (DueDate, error) {
	if _, err := time.Parse(DueDateLayout, date); err != nil {
		return DueDate{}, errors.Wrapf(err, "parsing due date %q", date)
	}
	return DueDate{Timeline: TimelineDated, Date: date}, nil
}

func (d DueDate) IsZero() bool {
	return d.Timeline == TimelineUnset
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.Timeline == TimelineDated {
		return json.Marshal(d.Date)
	}
	return []byte("null"), nil
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = NoTimeline()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = NoTimeline()
		return nil
	}
	*d = DueDate{Timeline: TimelineDated, Date: s}
	return nil
}

type Goal struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	DueDate   DueDate `json:"dueDate,omitzero"`
}

func NewGoal(text string, due DueDate) (Goal, error) {
	if strings.TrimSpace(text) == "" {
		return Goal{}, ErrEmptyGoal
	}
	return Goal{
		ID:      uuid.NewString(),
		Text:    text,
		DueDate: due,
	}, nil
}
