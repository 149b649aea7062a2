package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"newsdesk/models"
	"newsdesk/repository"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func browserKeys(t *testing.T) webpush.Keys {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return webpush.Keys{
		P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func vapidKeys(t *testing.T) (public, private string) {
	t.Helper()
	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return public, private
}

func TestNotifier_DisabledWithoutKeys(t *testing.T) {
	n := New(repository.NewMemorySubscriptions(), "", "", "mailto:a@b.c")
	assert.False(t, n.Enabled())
	assert.ErrorIs(t, n.Subscribe(context.Background(), webpush.Subscription{Endpoint: "x"}), ErrDisabled)
	n.PostCreated(models.Post{})
	n.Wait()
}

func TestNotifier_SubscribeValidates(t *testing.T) {
	pub, priv := vapidKeys(t)
	store := repository.NewMemorySubscriptions()
	n := New(store, pub, priv, "mailto:a@b.c")

	assert.ErrorIs(t, n.Subscribe(context.Background(), webpush.Subscription{Endpoint: "https://push.example/1"}), ErrInvalidSubscription)

	require.NoError(t, n.Subscribe(context.Background(), webpush.Subscription{
		Endpoint: "https://push.example/1",
		Keys:     browserKeys(t),
	}))
	subs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestNotifier_SendsToPushService(t *testing.T) {
	var hits atomic.Int32
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotAuth.Store(r.Header.Get("Authorization"))
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	pub, priv := vapidKeys(t)
	store := repository.NewMemorySubscriptions()
	n := New(store, pub, priv, "mailto:a@b.c")
	require.NoError(t, n.Subscribe(context.Background(), webpush.Subscription{Endpoint: srv.URL + "/sub/1", Keys: browserKeys(t)}))

	n.PostCreated(models.Post{ID: primitive.NewObjectID(), Title: "Breaking", Summary: "Something happened"})
	n.Wait()

	assert.Equal(t, int32(1), hits.Load())
	header, _ := gotAuth.Load().(string)
	assert.True(t, strings.HasPrefix(header, "vapid "), header)
}

func TestNotifier_PrunesGoneSubscriptions(t *testing.T) {
	pub, priv := vapidKeys(t)
	store := repository.NewMemorySubscriptions()
	n := New(store, pub, priv, "mailto:a@b.c")

	var mu sync.Mutex
	var endpoints []string
	n.send = func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		mu.Lock()
		endpoints = append(endpoints, sub.Endpoint)
		mu.Unlock()
		code := http.StatusCreated
		if strings.HasSuffix(sub.Endpoint, "gone") {
			code = http.StatusGone
		}
		return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}, nil
	}

	ctx := context.Background()
	require.NoError(t, n.Subscribe(ctx, webpush.Subscription{Endpoint: "https://push.example/live", Keys: browserKeys(t)}))
	require.NoError(t, n.Subscribe(ctx, webpush.Subscription{Endpoint: "https://push.example/gone", Keys: browserKeys(t)}))

	n.PostCreated(models.Post{ID: primitive.NewObjectID(), Title: "T", Summary: strings.Repeat("s", 500)})
	n.Wait()

	assert.Len(t, endpoints, 2)
	subs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/live", subs[0].Sub.Endpoint)
}

func TestNotifier_UpdatesAndDeletesDoNotPush(t *testing.T) {
	pub, priv := vapidKeys(t)
	n := New(repository.NewMemorySubscriptions(), pub, priv, "mailto:a@b.c")
	called := false
	n.send = func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		called = true
		return nil, nil
	}
	n.PostUpdated(models.Post{})
	n.PostDeleted("abc")
	n.Wait()
	assert.False(t, called)
}
