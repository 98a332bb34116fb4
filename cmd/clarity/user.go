package main

import (
	"fmt"
	"net/http"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/companion"
	"github.com/oliverisaac/clarity/types"
	"github.com/oliverisaac/clarity/views"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func getUserByID(db *gorm.DB, id uint) (types.User, error) {
	var user types.User
	err := db.Preload("PushSubscriptions").First(&user, "id = ?", id).Error

	return user, errors.Wrap(err, "Finding user")
}

func userExists(email string, db *gorm.DB) bool {
	var user types.User
	err := db.First(&user, "email = ?", email).Error

	return !errors.Is(err, gorm.ErrRecordNotFound)
}

func signUp(cfg types.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, 200, views.Layout("Sign up", views.SignUpForm(types.NewFormData(cfg))))
	}
}

func signUpWithEmailAndPassword(db *gorm.DB, cfg types.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := strings.TrimSpace(c.FormValue("name"))
		email := c.FormValue("email")
		password := c.FormValue("password")
		form := types.NewFormData(cfg)

		fail := func(status int, err error) error {
			return render(c, status, views.Layout("Sign up", views.SignUpForm(form.WithError(err))))
		}

		parsedEmail, err := mail.ParseAddress(email)
		if err != nil {
			return fail(422, fmt.Errorf("Oops! That email address appears to be invalid"))
		}
		email = parsedEmail.Address

		if !cfg.AllowSignup && !slices.Contains(cfg.AllowSignupEmails, email) {
			return fail(422, fmt.Errorf("Oops! Sign ups are closed for that email address"))
		}

		if len(password) < 8 {
			return fail(422, fmt.Errorf("Please choose a password of at least 8 characters"))
		}

		if userExists(email, db) {
			return fail(422, fmt.Errorf("Oops! It appears you are already registered"))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
		if err != nil {
			return errors.Wrap(err, "hashing sign up password")
		}

		// the first account administers reminders
		var count int64
		if err := db.Model(&types.User{}).Count(&count).Error; err != nil {
			return fail(500, errors.Wrap(err, "Internal server error"))
		}

		role := "user"
		if count == 0 {
			role = "admin"
		}

		user := types.User{
			Name:      name,
			Email:     email,
			Password:  string(hash),
			Role:      role,
			CreatedAt: time.Now(),
		}

		if err := db.Create(&user).Error; err != nil {
			return fail(500, errors.Wrap(err, "Create user error"))
		}
		logrus.Infof("Signed up %s as %s", user.Email, user.Role)

		if err := startSession(c, user); err != nil {
			return fail(500, err)
		}
		return c.Redirect(http.StatusFound, "/")
	}
}

func signIn(cfg types.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, 200, views.Layout("Sign in", views.SignInForm(types.NewFormData(cfg))))
	}
}

func signInWithEmailAndPassword(db *gorm.DB, cfg types.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := c.FormValue("email")
		password := c.FormValue("password")
		form := types.NewFormData(cfg)

		_, err := mail.ParseAddress(email)
		if err != nil {
			return render(c, 422, views.Layout("Sign in", views.SignInForm(form.WithErrorf("Invalid email"))))
		}

		var user types.User
		db.First(&user, "email = ?", email)
		if compareErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); compareErr != nil {
			return render(c, 422, views.Layout("Sign in", views.SignInForm(form.WithErrorf("Invalid email or password"))))
		}

		if err := startSession(c, user); err != nil {
			return render(c, 500, views.Layout("Sign in", views.SignInForm(form.WithError(err))))
		}

		return c.Redirect(http.StatusFound, "/")
	}
}

func startSession(c echo.Context, user types.User) error {
	sess, _ := session.Get(SessionKey, c)
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 24 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	sess.Values[SessionUserIDKey] = user.ID

	return errors.Wrap(sess.Save(c.Request(), c.Response()), "Internal server error")
}

func signOut(chat *companion.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, ok := GetSessionUser(c); ok {
			chat.Reset(user.Namespace())
		}

		sess, _ := session.Get(SessionKey, c)
		sess.Options.MaxAge = -1
		err := sess.Save(c.Request(), c.Response())
		if err != nil {
			return errors.Wrap(err, "error saving session")
		}

		return c.Redirect(http.StatusFound, "/")
	}
}
