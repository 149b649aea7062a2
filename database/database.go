package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"
)

const (
	UsersCollection         = "users"
	PostsCollection         = "posts"
	SubscriptionsCollection = "push_subscriptions"
)

// Dialer opens and verifies a client. The default dials uri and pings it.
type Dialer func(ctx context.Context) (*mongo.Client, error)

// DB is the process-wide handle to MongoDB. It is created once in main and passed to
// every store. The first caller connects; concurrent first callers wait for that same
// attempt. A failed attempt is not remembered, so the next caller dials again.
type DB struct {
	name string
	dial Dialer

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database

	group singleflight.Group
}

func New(uri, name string) *DB {
	return NewWithDialer(name, func(ctx context.Context) (*mongo.Client, error) {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return client, nil
	})
}

func NewWithDialer(name string, dial Dialer) *DB {
	return &DB{name: name, dial: dial}
}

// Connect initializes the handle if it is not already connected.
func (d *DB) Connect(ctx context.Context) error {
	_, err := d.Database(ctx)
	return err
}

func (d *DB) Database(ctx context.Context) (*mongo.Database, error) {
	if db := d.current(); db != nil {
		return db, nil
	}

	v, err, _ := d.group.Do("connect", func() (interface{}, error) {
		if db := d.current(); db != nil {
			return db, nil
		}

		client, err := d.dial(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}

		d.mu.Lock()
		d.client = client
		d.db = client.Database(d.name)
		d.mu.Unlock()

		slog.Info("connected to mongodb", "database", d.name)
		return d.db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Database), nil
}

func (d *DB) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := d.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

func (d *DB) current() *mongo.Database {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

func (d *DB) Ping(ctx context.Context) error {
	db, err := d.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the unique username index that backs the single-identity
// invariant, and the index used to list posts newest first.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	users, err := d.Collection(ctx, UsersCollection)
	if err != nil {
		return err
	}
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	posts, err := d.Collection(ctx, PostsCollection)
	if err != nil {
		return err
	}
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	}); err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}

	subs, err := d.Collection(ctx, SubscriptionsCollection)
	if err != nil {
		return err
	}
	if _, err := subs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sub.endpoint", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("endpoint_unique"),
	}); err != nil {
		return fmt.Errorf("create subscriptions index: %w", err)
	}
	return nil
}

func (d *DB) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	client := d.client
	d.client, d.db = nil, nil
	d.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	slog.Info("disconnected from mongodb")
	return nil
}
