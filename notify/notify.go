// Package notify sends browser push notifications to feed readers when a post is
// published.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"newsdesk/models"

	"github.com/SherClockHolmes/webpush-go"
)

var (
	ErrDisabled            = errors.New("push notifications are not configured")
	ErrInvalidSubscription = errors.New("subscription needs endpoint, p256dh and auth")
)

type SubscriptionStore interface {
	Upsert(ctx context.Context, sub webpush.Subscription) error
	List(ctx context.Context) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type sendFunc func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type Notifier struct {
	store      SubscriptionStore
	publicKey  string
	privateKey string
	subject    string
	send       sendFunc

	wg sync.WaitGroup
}

// New returns a notifier. With an empty key pair it stays disabled and every
// publish is a no-op.
func New(store SubscriptionStore, publicKey, privateKey, subject string) *Notifier {
	return &Notifier{
		store:      store,
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
		send:       webpush.SendNotificationWithContext,
	}
}

func (n *Notifier) Enabled() bool {
	return n.publicKey != "" && n.privateKey != ""
}

func (n *Notifier) PublicKey() string {
	return n.publicKey
}

func (n *Notifier) Subscribe(ctx context.Context, sub webpush.Subscription) error {
	if !n.Enabled() {
		return ErrDisabled
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return ErrInvalidSubscription
	}
	return n.store.Upsert(ctx, sub)
}

func (n *Notifier) PostCreated(post models.Post) {
	if !n.Enabled() {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in push notification", "panic", r)
			}
		}()
		n.broadcast(post)
	}()
}

func (n *Notifier) PostUpdated(post models.Post) {}

func (n *Notifier) PostDeleted(id string) {}

// Wait blocks until in-flight notifications finish. Used on shutdown.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) broadcast(post models.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := n.store.List(ctx)
	if err != nil {
		slog.Error("list push subscriptions", "error", err)
		return
	}

	body := post.Summary
	if len(body) > 120 {
		body = body[:120] + "..."
	}
	payload, err := json.Marshal(map[string]interface{}{
		"title": post.Title,
		"body":  body,
		"data": map[string]interface{}{
			"postId":    post.ID.Hex(),
			"status":    post.Status,
			"url":       "/#post-" + post.ID.Hex(),
			"timestamp": post.CreatedAt.Unix(),
		},
	})
	if err != nil {
		slog.Error("marshal push payload", "error", err)
		return
	}

	sent := 0
	for i := range subs {
		sub := subs[i].Sub
		resp, err := n.send(ctx, payload, &sub, &webpush.Options{
			Subscriber:      n.subject,
			VAPIDPublicKey:  n.publicKey,
			VAPIDPrivateKey: n.privateKey,
			TTL:             3600,
		})
		if err != nil {
			slog.Warn("push send failed", "endpoint", sub.Endpoint, "error", err)
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusGone, http.StatusNotFound:
			if err := n.store.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				slog.Warn("prune expired push subscription", "endpoint", sub.Endpoint, "error", err)
			} else {
				slog.Info("pruned expired push subscription", "endpoint", sub.Endpoint)
			}
		default:
			if resp.StatusCode < 300 {
				sent++
			} else {
				slog.Warn("push service rejected notification", "endpoint", sub.Endpoint, "status", resp.StatusCode)
			}
		}
	}
	slog.Info("push notifications sent", "post_id", post.ID.Hex(), "sent", sent, "subscriptions", len(subs))
}
