package main

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/audio"
	"github.com/oliverisaac/clarity/lib/gateway"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/pkg/errors"
)

type affirmationResponse struct {
	Text string `json:"text"`
}

func (a *app) affirmations(c echo.Context) *stores.Affirmations {
	return stores.NewAffirmations(a.scope(c), a.gateway, a.now)
}

func getAffirmation(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		text, err := a.affirmations(c).Today(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "loading affirmation")
		}
		return c.JSON(http.StatusOK, affirmationResponse{Text: text})
	}
}

func refreshAffirmation(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		text, err := a.affirmations(c).Refresh(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "refreshing affirmation")
		}
		return respond(c, http.StatusOK, affirmationResponse{Text: text})
	}
}

func speakAffirmation(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		text, err := a.affirmations(c).Today(ctx)
		if err != nil {
			return errors.Wrap(err, "loading affirmation")
		}

		player := wavPlayer(c)
		done, err := player.Play(ctx, audio.Clip{
			PCM:        a.gateway.SynthesizeSpeech(ctx, text),
			SampleRate: gateway.SpeechSampleRate,
			Channels:   gateway.SpeechChannels,
		})
		if errors.Is(err, audio.ErrNoAudio) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "speech is not available right now")
		}
		if err != nil {
			return errors.Wrap(err, "playing affirmation")
		}
		<-done
		return errors.Wrap(player.Err(), "streaming affirmation")
	}
}

// wavPlayer streams a clip as the response body.
func wavPlayer(c echo.Context) *audio.StreamPlayer {
	return &audio.StreamPlayer{
		W: c.Response(),
		BeforeWrite: func(size int) {
			h := c.Response().Header()
			h.Set(echo.HeaderContentType, "audio/wav")
			h.Set(echo.HeaderContentLength, strconv.Itoa(size))
			c.Response().WriteHeader(http.StatusOK)
		},
	}
}
