package stores

import (
	"context"
	"time"

	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const dayLayout = "2006-01-02"

// AffirmationSource produces a fresh affirmation. It never fails; a broken
// source answers with a fallback text.
type AffirmationSource interface {
	GenerateAffirmation(ctx context.Context) string
}

// Affirmations caches one affirmation per calendar day.
type Affirmations struct {
	adapter *localstore.Adapter
	source  AffirmationSource
	now     func() time.Time
}

func NewAffirmations(a *localstore.Adapter, source AffirmationSource, now func() time.Time) *Affirmations {
	if now == nil {
		now = time.Now
	}
	return &Affirmations{adapter: a, source: source, now: now}
}

// Today returns today's cached affirmation, asking the source only when the
// cache is empty or was filled on another day.
func (a *Affirmations) Today(ctx context.Context) (string, error) {
	text, err := a.adapter.Get(ctx, KeyAffirmation)
	if err != nil {
		return "", errors.Wrap(err, "reading cached affirmation")
	}
	day, err := a.adapter.Get(ctx, KeyAffirmationDate)
	if err != nil {
		return "", errors.Wrap(err, "reading cached affirmation date")
	}

	if text != "" && day == a.today() {
		return text, nil
	}
	return a.Refresh(ctx)
}

// Refresh always asks the source and caches the answer for today.
func (a *Affirmations) Refresh(ctx context.Context) (string, error) {
	text := a.source.GenerateAffirmation(ctx)
	day := a.today()

	if err := a.adapter.Set(ctx, KeyAffirmation, text); err != nil {
		return "", errors.Wrap(err, "caching affirmation")
	}
	if err := a.adapter.Set(ctx, KeyAffirmationDate, day); err != nil {
		return "", errors.Wrap(err, "caching affirmation date")
	}
	logrus.WithField("day", day).Debug("Cached new daily affirmation")
	return text, nil
}

func (a *Affirmations) today() string {
	return a.now().Format(dayLayout)
}
