package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/oliverisaac/clarity/lib/companion"
	"github.com/oliverisaac/clarity/lib/gateway"
	"github.com/oliverisaac/clarity/lib/kv"
	"github.com/oliverisaac/clarity/lib/localstore"
	"github.com/oliverisaac/clarity/lib/pushclient"
	"github.com/oliverisaac/clarity/static"
	"github.com/oliverisaac/clarity/types"
	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "github.com/ncruces/go-sqlite3/embed"
	sqlite "github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
)

func init() {
	goli.InitLogrus(logrus.DebugLevel)
}

const SessionKey = "session"
const UserKey = "session-user"
const SessionUserIDKey = "userid"

func render(ctx echo.Context, status int, t templ.Component) error {
	ctx.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	ctx.Response().WriteHeader(status)

	err := t.Render(ctx.Request().Context(), ctx.Response().Writer)
	if err != nil {
		logrus.Error(errors.Wrap(err, "rendering template"))
		return nil
	}

	return nil
}

// app is everything a request handler may need.
type app struct {
	cfg     types.Config
	db      *gorm.DB
	storage *localstore.Storage
	gateway gateway.Gateway
	chat    *companion.Service
	push    pushclient.Client
	uploads uploadTracker
	now     func() time.Time
}

func main() {
	err := run()
	if err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	err := godotenv.Load(".env")
	if err != nil {
		logrus.Error(errors.Wrap(err, "Failed to load .env"))
	}

	tz := os.Getenv("TZ")
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return errors.Wrap(err, "failed to load timezone")
		}
		time.Local = loc
	}

	cfg, err := types.ConfigFromEnv()
	if err != nil {
		return errors.Wrap(err, "Loading config from env")
	}

	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to connect database")
	}

	err = db.AutoMigrate(&types.User{}, &types.PushSubscription{})
	if err != nil {
		return errors.Wrap(err, "Failed to migrate")
	}

	store, err := kv.Open(ctx, cfg, db)
	if err != nil {
		return errors.Wrap(err, "opening key/value storage")
	}
	defer store.Close()

	var gw gateway.Gateway = gateway.Offline{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := gateway.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GatewayTimeout)
		if err != nil {
			return errors.Wrap(err, "creating gemini gateway")
		}
		gw = gemini
	}

	a := &app{
		cfg:     cfg,
		db:      db,
		storage: localstore.New(store),
		gateway: gw,
		chat:    companion.NewService(gw, cfg.ChatTTL),
		push: pushclient.Client{
			Subscriber:      "https://" + cfg.Hostname,
			VapidPublicKey:  cfg.VapidPublicKey,
			VapidPrivateKey: cfg.VapidPrivateKey,
			TTL:             24 * 3600,
		},
		now: time.Now,
	}

	e := newServer(a)

	if cfg.RemindersEnabled() {
		if err := startReminderWorker(a); err != nil {
			return errors.Wrap(err, "starting reminder worker")
		}
	}

	return e.Start(cfg.Listen)
}

// Request collectors register once with the default registry, however many
// servers are built.
var requestMetrics = echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
	Namespace: "clarity",
	Skipper: func(c echo.Context) bool {
		return c.Request().URL.Path == "/metrics"
	},
})

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.StaticFS("/static", static.FS)

	origErrHandler := e.HTTPErrorHandler
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		logrus.Error(err)
		origErrHandler(err, c)
	}

	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		Skipper:           middleware.DefaultSkipper,
		StackSize:         4 << 10, // 4 KB
		DisableStackAll:   false,
		DisablePrintStack: false,
		LogLevel:          log.ERROR,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logrus.Error(errors.Wrap(err, "recovered panic:"))
			for _, l := range strings.Split(string(stack), "\n") {
				logrus.Errorf("stack: %s", strings.ReplaceAll(l, "\t", "  "))
			}
			return nil
		},
		DisableErrorHandler: false,
	}))

	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("12M"))

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/metrics"
		},
	}))

	e.Use(requestMetrics)
	e.GET("/metrics", echoprometheus.NewHandler())

	e.Use(session.Middleware(sessions.NewCookieStore(a.cfg.CookeSecret)))
	e.Use(UserMiddleware(a.db))

	e.GET("/serviceWorker.js", func(c echo.Context) error {
		sw, err := static.FS.ReadFile("serviceWorker.js")
		if err != nil {
			return errors.Wrap(err, "reading service worker from embed fs")
		}
		return c.Blob(http.StatusOK, "application/javascript", sw)
	})

	// Pages
	e.GET("/", homePageHandler(a))
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// Auth
	e.GET("/auth/sign-in", signIn(a.cfg))
	e.POST("/auth/sign-in", signInWithEmailAndPassword(a.db, a.cfg))
	if a.cfg.AllowSignup || len(a.cfg.AllowSignupEmails) > 0 {
		e.GET("/auth/sign-up", signUp(a.cfg))
		e.POST("/auth/sign-up", signUpWithEmailAndPassword(a.db, a.cfg))
	}
	e.POST("/auth/sign-out", signOut(a.chat))

	api := e.Group("/api", RequireUser)

	api.GET("/affirmation", getAffirmation(a))
	api.POST("/affirmation/refresh", refreshAffirmation(a))
	api.GET("/affirmation/speech", speakAffirmation(a))

	api.GET("/journal", listJournal(a))
	api.POST("/journal", createJournalEntry(a))
	api.DELETE("/journal/:id", deleteJournalEntry(a))

	api.GET("/goals", listGoals(a))
	api.POST("/goals", createGoal(a))
	api.POST("/goals/:id/toggle", toggleGoal(a))
	api.DELETE("/goals/:id", deleteGoal(a))

	api.GET("/vision", listVision(a))
	api.POST("/vision", pinVisionItem(a))
	api.PUT("/vision/:id/caption", captionVisionItem(a))
	api.DELETE("/vision/:id", unpinVisionItem(a))

	api.GET("/companion", listMessages(a))
	api.POST("/companion", sendMessage(a))
	api.GET("/companion/:id/speech", speakMessage(a))

	// push
	push := e.Group("/push", RequireUser)
	push.POST("/subscribe", saveSubscription(a.db))
	push.POST("/unsubscribe", removeSubscription(a.db))
	push.POST("/trigger", triggerPushes())

	return e
}

func UserMiddleware(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, _ := session.Get(SessionKey, c)
			if sess.Values[SessionUserIDKey] != nil {
				userID := sess.Values[SessionUserIDKey].(uint)
				user, err := getUserByID(db, userID)
				if err != nil {
					return errors.Wrap(err, "getting user by id")
				}
				c.Set(UserKey, user)
			}
			return next(c)
		}
	}
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := GetSessionUser(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}

func GetSessionUser(c echo.Context) (types.User, bool) {
	u := c.Get(UserKey)
	if u != nil {
		user := u.(types.User)
		logrus.Debugf("Found session user %s", user.Email)
		return user, true
	}
	return types.User{}, false
}

// scope returns the signed-in user's storage namespace. Only call it behind
// RequireUser.
func (a *app) scope(c echo.Context) *localstore.Adapter {
	user, _ := GetSessionUser(c)
	return a.storage.Scope(user.Namespace())
}

func owner(c echo.Context) string {
	user, _ := GetSessionUser(c)
	return user.Namespace()
}

// wantsHTML reports whether the request came from a plain form post on the
// dashboard, which expects to be sent back to the page.
func wantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func respond(c echo.Context, status int, v any) error {
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if v == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, v)
}
