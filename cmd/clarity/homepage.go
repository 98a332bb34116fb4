package main

import (
	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/oliverisaac/clarity/views"
	"github.com/sirupsen/logrus"
)

func homePageHandler(a *app) echo.HandlerFunc {
	return func(c echo.Context) error {
		pageData := types.HomePageData{Config: a.cfg}

		user, ok := GetSessionUser(c)
		if !ok {
			logrus.Debug("Generating anonymous homepage")
			return render(c, 200, views.Index(pageData))
		}

		logrus.Infof("Generating homepage for user %s", user.Email)
		ctx := c.Request().Context()
		scope := a.storage.Scope(user.Namespace())

		affirmation, err := stores.NewAffirmations(scope, a.gateway, a.now).Today(ctx)
		if err != nil {
			pageData = pageData.WithError(err)
		}

		journal, err := stores.NewJournal(scope).List(ctx)
		if err != nil {
			pageData = pageData.WithError(err)
		}

		goals, err := stores.NewGoals(scope).List(ctx)
		if err != nil {
			pageData = pageData.WithError(err)
		}

		vision, err := stores.NewVisionBoard(scope).List(ctx)
		if err != nil {
			pageData = pageData.WithError(err)
		}

		pageData = pageData.
			WithUser(user).
			WithAffirmation(affirmation).
			WithJournal(journal).
			WithGoals(goals).
			WithVision(vision).
			WithMessages(a.chat.Messages(user.Namespace()))

		return render(c, 200, views.Index(pageData))
	}
}
