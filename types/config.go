package types

import (
	errs "errors"
	"fmt"
	"net/mail"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	StorageSQLite = "sqlite"
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Hostname          string
	Listen            string
	AllowSignup       bool
	AllowSignupEmails []string
	CookeSecret       []byte
	DBPath            string
	Storage           string
	BoltPath          string
	RedisURL          string
	GeminiAPIKey      string
	GatewayTimeout    time.Duration
	ChatTTL           time.Duration
	ReminderSchedule  string
	VapidPublicKey    string
	VapidPrivateKey   string
}

// RemindersEnabled reports whether both VAPID keys are present.
func (c Config) RemindersEnabled() bool {
	return c.VapidPublicKey != "" && c.VapidPrivateKey != ""
}

func ConfigFromEnv() (Config, error) {
	ret := Config{}
	var retErr error
	var err error

	ret.AllowSignup, err = strconv.ParseBool(goli.DefaultEnv("CLARITY_ALLOW_SIGNUP", "false"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing CLARITY_ALLOW_SIGNUP"))
	}

	allowedEmails := strings.Split(os.Getenv("CLARITY_ALLOW_SIGNUP_EMAILS"), ",")
	for _, e := range allowedEmails {
		if e == "" {
			continue
		}
		email, err := mail.ParseAddress(e)
		if err != nil {
			retErr = errs.Join(retErr, errors.Wrapf(err, "parsing email %q", e))
		} else {
			ret.AllowSignupEmails = append(ret.AllowSignupEmails, email.Address)
		}
	}
	logrus.Infof("Allowed signup emails: %v", ret.AllowSignupEmails)

	cookieSecret, ok := os.LookupEnv("CLARITY_COOKIE_STORE_SECRET")
	if !ok {
		retErr = errs.Join(retErr, fmt.Errorf("You must define env CLARITY_COOKIE_STORE_SECRET"))
	} else {
		ret.CookeSecret = []byte(cookieSecret)
	}

	ret.DBPath, ok = os.LookupEnv("CLARITY_DB_PATH")
	if !ok {
		retErr = errs.Join(retErr, fmt.Errorf("You must define env CLARITY_DB_PATH"))
	} else if _, err := os.Stat(path.Dir(ret.DBPath)); err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "Directory for CLARITY_DB_PATH must exist"))
	}

	ret.Storage = strings.ToLower(goli.DefaultEnv("CLARITY_STORAGE", StorageSQLite))
	switch ret.Storage {
	case StorageSQLite, StorageMemory:
	case StorageBolt:
		ret.BoltPath = goli.DefaultEnv("CLARITY_BOLT_PATH", path.Join(path.Dir(ret.DBPath), "clarity.bolt"))
	case StorageRedis:
		ret.RedisURL, ok = os.LookupEnv("CLARITY_REDIS_URL")
		if !ok {
			retErr = errs.Join(retErr, fmt.Errorf("You must define env CLARITY_REDIS_URL when CLARITY_STORAGE=redis"))
		}
	default:
		retErr = errs.Join(retErr, fmt.Errorf("Unknown CLARITY_STORAGE %q", ret.Storage))
	}

	ret.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if ret.GeminiAPIKey == "" {
		logrus.Warn("GEMINI_API_KEY is not set, the companion will answer with fallbacks only")
	}

	ret.GatewayTimeout, err = time.ParseDuration(goli.DefaultEnv("CLARITY_GATEWAY_TIMEOUT", "30s"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing CLARITY_GATEWAY_TIMEOUT"))
	}

	ret.ChatTTL, err = time.ParseDuration(goli.DefaultEnv("CLARITY_CHAT_TTL", "12h"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing CLARITY_CHAT_TTL"))
	}

	ret.ReminderSchedule = goli.DefaultEnv("CLARITY_REMINDER_SCHEDULE", "0 21 * * *")
	if _, err := cron.ParseStandard(ret.ReminderSchedule); err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing CLARITY_REMINDER_SCHEDULE"))
	}

	ret.VapidPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	ret.VapidPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	if !ret.RemindersEnabled() {
		logrus.Warn("VAPID keys are not set, daily reminders are disabled")
	}

	ret.Hostname = goli.DefaultEnv("CLARITY_HOSTNAME", "localhost")
	ret.Listen = goli.DefaultEnv("CLARITY_LISTEN", ":8080")

	return ret, retErr
}
