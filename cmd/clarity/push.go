package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/pushclient"
	"github.com/oliverisaac/clarity/lib/stores"
	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// triggerPushChan carries a user id to remind, or 0 for everyone.
var triggerPushChan = make(chan uint)

func startReminderWorker(a *app) error {
	c := cron.New()
	_, err := c.AddFunc(a.cfg.ReminderSchedule, func() {
		triggerPushChan <- 0
	})
	if err != nil {
		return errors.Wrapf(err, "scheduling reminders at %q", a.cfg.ReminderSchedule)
	}
	c.Start()
	logrus.Infof("Daily reminders scheduled at %q", a.cfg.ReminderSchedule)

	go func() {
		for triggerUID := range triggerPushChan {
			logrus.Info("Triggering daily reminders")
			sendReminders(context.Background(), a, triggerUID)
		}
	}()
	return nil
}

func sendReminders(ctx context.Context, a *app, triggerUID uint) {
	users, err := getAllUsersWithSubscriptions(a.db)
	if err != nil {
		logrus.Error(errors.Wrap(err, "getting all users"))
		return
	}

	for _, user := range users {
		if triggerUID > 0 && triggerUID != user.ID {
			continue
		}
		err := sendReminderToUser(ctx, a, user)
		if err != nil {
			logrus.Error(errors.Wrap(err, "sending reminder"))
		}
	}
}

func getAllUsersWithSubscriptions(db *gorm.DB) ([]types.User, error) {
	var users []types.User
	err := db.Preload("PushSubscriptions").Find(&users).Error
	return users, err
}

func sendReminderToUser(ctx context.Context, a *app, user types.User) error {
	if len(user.PushSubscriptions) == 0 {
		return nil
	}
	logrus := logrus.WithField("user", user.Email)

	text, err := stores.NewAffirmations(a.storage.Scope(user.Namespace()), a.gateway, a.now).Today(ctx)
	if err != nil {
		return errors.Wrap(err, "loading affirmation for reminder")
	}

	push := pushclient.Push{
		Topic: "clarity-daily-reminder",
		Title: "Clarity",
		Body:  text,
		Link:  fmt.Sprintf("https://%s/", a.cfg.Hostname),
	}

	for _, sub := range user.PushSubscriptions {
		logrus := logrus.WithField("subscription", sub.ID)
		err := a.push.SendPush(sub, push)
		if errors.Is(err, pushclient.ErrGone) {
			logrus.Info("Subscriber no longer active")
			if err := a.db.Delete(&sub).Error; err != nil {
				logrus.Error(errors.Wrap(err, "deleting subscription"))
			}
			continue
		}
		if err != nil {
			logrus.Error(err)
			continue
		}
		logrus.Info("Sent reminder to user")
	}
	return nil
}

func triggerPushes() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, _ := GetSessionUser(c)
		if user.Role != "admin" {
			return c.String(http.StatusForbidden, "must be admin")
		}
		select {
		case triggerPushChan <- user.ID:
			return c.String(http.StatusOK, "Triggered reminders")
		default:
			return c.String(http.StatusServiceUnavailable, "reminders are not running")
		}
	}
}

func removeSubscription(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, _ := GetSessionUser(c)
		if len(user.PushSubscriptions) == 0 {
			return c.String(http.StatusOK, "no subscriptions")
		}

		if err := db.Delete(user.PushSubscriptions).Error; err != nil {
			return errors.Wrap(err, "removing subscription")
		}

		return c.String(http.StatusOK, "subscription removed")
	}
}

func saveSubscription(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, _ := GetSessionUser(c)

		var sub webpush.Subscription
		if err := c.Bind(&sub); err != nil {
			return errors.Wrap(err, "binding subscription")
		}
		if sub.Endpoint == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "subscription has no endpoint")
		}

		keys, err := json.Marshal(sub.Keys)
		if err != nil {
			return errors.Wrap(err, "marshalling subscription keys")
		}

		pushSubscription := types.PushSubscription{
			UserID:   user.ID,
			Endpoint: sub.Endpoint,
			P256DH:   sub.Keys.P256dh,
			Auth:     sub.Keys.Auth,
			Keys:     string(keys),
		}

		if err := db.Where(types.PushSubscription{UserID: user.ID, Endpoint: sub.Endpoint}).
			Assign(pushSubscription).
			FirstOrCreate(&pushSubscription).Error; err != nil {
			return errors.Wrap(err, "saving subscription")
		}

		return c.String(http.StatusOK, "subscription saved")
	}
}
