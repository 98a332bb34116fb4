package main

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
)

func listJournal(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := stores.NewJournal(a.scope(c)).List(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "listing journal")
		}
		return c.JSON(http.StatusOK, entries)
	}
}

func createJournalEntry(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		content := c.FormValue("content")
		if strings.TrimSpace(content) == "" {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "write something first")
		}

		mood := types.Mood(c.FormValue("mood"))
		if !mood.Valid() {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "unknown mood")
		}

		entry := types.NewJournalEntry(content, mood, a.now())
		if err := stores.NewJournal(a.scope(c)).Append(c.Request().Context(), entry); err != nil {
			return errors.Wrap(err, "saving journal entry")
		}
		return respond(c, http.StatusCreated, entry)
	}
}

func deleteJournalEntry(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := stores.NewJournal(a.scope(c)).Remove(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errors.Wrap(err, "removing journal entry")
		}
		if !found {
			return echo.NewHTTPError(http.StatusNotFound, "no such entry")
		}
		return respond(c, http.StatusNoContent, nil)
	}
}
