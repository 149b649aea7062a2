package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// offlineClient builds a client without contacting a server; mongo.Connect is lazy.
func offlineClient(ctx context.Context) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(50*time.Millisecond))
}

func TestDatabase_ConcurrentFirstCallsShareOneDial(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})

	db := NewWithDialer("newsdesk_test", func(ctx context.Context) (*mongo.Client, error) {
		dials.Add(1)
		<-release
		return offlineClient(ctx)
	})
	t.Cleanup(func() { _ = db.Disconnect(context.Background()) })

	const callers = 8
	results := make([]*mongo.Database, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = db.Database(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, "newsdesk_test", results[0].Name())
}

func TestDatabase_FailedDialIsRetried(t *testing.T) {
	var dials atomic.Int32
	db := NewWithDialer("newsdesk_test", func(ctx context.Context) (*mongo.Client, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return offlineClient(ctx)
	})
	t.Cleanup(func() { _ = db.Disconnect(context.Background()) })

	_, err := db.Database(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	coll, err := db.Collection(context.Background(), PostsCollection)
	require.NoError(t, err)
	assert.Equal(t, PostsCollection, coll.Name())
	assert.Equal(t, int32(2), dials.Load())

	_, err = db.Database(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), dials.Load(), "connected handle is reused")
}

func TestDatabase_DisconnectResetsHandle(t *testing.T) {
	var dials atomic.Int32
	db := NewWithDialer("newsdesk_test", func(ctx context.Context) (*mongo.Client, error) {
		dials.Add(1)
		return offlineClient(ctx)
	})

	require.NoError(t, db.Connect(context.Background()))
	require.NoError(t, db.Disconnect(context.Background()))
	require.NoError(t, db.Disconnect(context.Background()), "second disconnect is a no-op")

	require.NoError(t, db.Connect(context.Background()))
	assert.Equal(t, int32(2), dials.Load())
	require.NoError(t, db.Disconnect(context.Background()))
}
