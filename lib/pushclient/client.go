package pushclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
)

// ErrGone means the browser dropped the subscription and it should be
// deleted.
var ErrGone = errors.New("push subscription is gone")

type Push struct {
	Topic string
	Title string
	Body  string
	Icon  string
	Badge string
	Link  string
}

type Client struct {
	Subscriber      string
	VapidPublicKey  string
	VapidPrivateKey string
	TTL             int
	HTTPClient      *http.Client
}

func (c Client) payload(push Push) ([]byte, error) {
	payload := map[string]interface{}{
		"title": push.Title,
		"body":  push.Body,
		"data": map[string]string{
			"url": push.Link,
		},
	}
	if push.Icon != "" {
		payload["icon"] = push.Icon
	}
	if push.Badge != "" {
		payload["badge"] = push.Badge
	}
	return json.Marshal(payload)
}

func (c Client) SendPush(sub types.PushSubscription, push Push) error {
	pushPayload, err := c.payload(push)
	if err != nil {
		return errors.Wrap(err, "marshalling push payload")
	}

	opts := &webpush.Options{
		Subscriber:      c.Subscriber,
		Topic:           push.Topic,
		VAPIDPublicKey:  c.VapidPublicKey,
		VAPIDPrivateKey: c.VapidPrivateKey,
		TTL:             c.TTL,
		Urgency:         webpush.UrgencyNormal,
	}
	if c.HTTPClient != nil {
		opts.HTTPClient = c.HTTPClient
	}

	resp, err := webpush.SendNotification(pushPayload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}, opts)
	if err != nil {
		return errors.Wrap(err, "sending push notification")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Failed to read response body")
	}

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("Failed to send push (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
