package main

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/labstack/echo/v4"
	"github.com/oliverisaac/clarity/lib/pushclient"
	"github.com/oliverisaac/clarity/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscriptionKeys(t *testing.T) webpush.Keys {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return webpush.Keys{
		P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func TestSaveSubscription_IsIdempotentPerEndpoint(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.db.Create(&types.User{Email: "sam@example.com"}).Error)
	var user types.User
	require.NoError(t, a.db.First(&user).Error)

	body, err := json.Marshal(webpush.Subscription{Endpoint: "https://push.example.org/abc", Keys: subscriptionKeys(t)})
	require.NoError(t, err)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/push/subscribe", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(UserKey, user)
		require.NoError(t, saveSubscription(a.db)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	var count int64
	require.NoError(t, a.db.Model(&types.PushSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendReminders_DeliversAffirmationAndDropsGoneSubscriptions(t *testing.T) {
	a, _ := newTestApp(t)

	var delivered atomic.Int32
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer live.Close()
	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()

	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	a.push = pushclient.Client{
		Subscriber:      "https://clarity.example.org",
		VapidPublicKey:  pub,
		VapidPrivateKey: priv,
		TTL:             60,
	}

	user := types.User{Email: "sam@example.com"}
	require.NoError(t, a.db.Create(&user).Error)
	for _, endpoint := range []string{live.URL, gone.URL} {
		keys := subscriptionKeys(t)
		require.NoError(t, a.db.Create(&types.PushSubscription{
			UserID:   user.ID,
			Endpoint: endpoint,
			P256DH:   keys.P256dh,
			Auth:     keys.Auth,
		}).Error)
	}

	sendReminders(context.Background(), a, 0)

	assert.Equal(t, int32(1), delivered.Load())
	var left []types.PushSubscription
	require.NoError(t, a.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, live.URL, left[0].Endpoint)
}

func TestTriggerPushes_AdminOnly(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/push/trigger", nil), rec)
	c.Set(UserKey, testUser)

	require.NoError(t, triggerPushes()(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
