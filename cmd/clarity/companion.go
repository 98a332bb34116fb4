package main

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/audio"
	"github.com/oliverisaac/clarity/lib/companion"
	"github.com/pkg/errors"
)

func listMessages(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, a.chat.Messages(owner(c)))
	}
}

func attachmentFromForm(c echo.Context) (*companion.Attachment, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading attachment")
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening attachment")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "reading attachment")
	}
	return &companion.Attachment{Data: data}, nil
}

func sendMessage(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		image, err := attachmentFromForm(c)
		if err != nil {
			return err
		}

		reply, err := a.chat.Send(c.Request().Context(), owner(c), c.FormValue("text"), image)
		switch {
		case errors.Is(err, companion.ErrEmptyMessage), errors.Is(err, companion.ErrNotAnImage):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return errors.Wrap(err, "sending message")
		}
		return respond(c, http.StatusCreated, reply)
	}
}

func speakMessage(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		player := wavPlayer(c)
		err := a.chat.Speak(c.Request().Context(), owner(c), c.Param("id"), player)
		switch {
		case errors.Is(err, companion.ErrUnknownMessage):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, companion.ErrAlreadySpeaking):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, audio.ErrNoAudio):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "speech is not available right now")
		case err != nil:
			return errors.Wrap(err, "reading message aloud")
		}
		return errors.Wrap(player.Err(), "streaming message")
	}
}
