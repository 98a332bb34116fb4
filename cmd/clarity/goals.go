package main

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
)

func listGoals(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		goals, err := stores.NewGoals(a.scope(c)).List(c.Request().Context())
		if err != nil {
			return errors.Wrap(err, "listing goals")
		}
		return c.JSON(http.StatusOK, goals)
	}
}

// dueDateFromForm reads the goal form. A ticked "no timeline" wins over any
// date; neither leaves the due date unset.
func dueDateFromForm(c echo.Context) (types.DueDate, error) {
	if noTimeline, _ := strconv.ParseBool(c.FormValue("noTimeline")); noTimeline {
		return types.NoTimeline(), nil
	}
	if date := c.FormValue("dueDate"); date != "" {
		return types.DueOn(date)
	}
	return types.DueDate{}, nil
}

func createGoal(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		due, err := dueDateFromForm(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "due date must look like 2006-01-02")
		}

		goal, err := types.NewGoal(c.FormValue("text"), due)
		if errors.Is(err, types.ErrEmptyGoal) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		if err != nil {
			return errors.Wrap(err, "creating goal")
		}

		if err := stores.NewGoals(a.scope(c)).Append(c.Request().Context(), goal); err != nil {
			return errors.Wrap(err, "saving goal")
		}
		return respond(c, http.StatusCreated, goal)
	}
}

func toggleGoal(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		goals := stores.NewGoals(a.scope(c))

		found, err := goals.Toggle(ctx, c.Param("id"))
		if err != nil {
			return errors.Wrap(err, "toggling goal")
		}
		if !found {
			return echo.NewHTTPError(http.StatusNotFound, "no such goal")
		}

		list, err := goals.List(ctx)
		if err != nil {
			return errors.Wrap(err, "listing goals")
		}
		for _, g := range list {
			if g.ID == c.Param("id") {
				return respond(c, http.StatusOK, g)
			}
		}
		return respond(c, http.StatusOK, nil)
	}
}

func deleteGoal(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := stores.NewGoals(a.scope(c)).Remove(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errors.Wrap(err, "removing goal")
		}
		if !found {
			return echo.NewHTTPError(http.StatusNotFound, "no such goal")
		}
		return respond(c, http.StatusNoContent, nil)
	}
}
