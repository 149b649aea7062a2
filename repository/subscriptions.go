package repository

import (
	"context"
	"fmt"
	"time"

	"newsdesk/database"
	"newsdesk/models"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Subscriptions struct {
	db Collections
}

func NewSubscriptions(db Collections) *Subscriptions {
	return &Subscriptions{db: db}
}

// Upsert stores sub, replacing the keys of an existing registration for the same endpoint.
func (r *Subscriptions) Upsert(ctx context.Context, sub webpush.Subscription) error {
	coll, err := r.db.Collection(ctx, database.SubscriptionsCollection)
	if err != nil {
		return err
	}

	_, err = coll.UpdateOne(ctx,
		bson.M{"sub.endpoint": sub.Endpoint},
		bson.M{
			"$set":         bson.M{"sub": sub},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "createdAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *Subscriptions) List(ctx context.Context) ([]models.PushSubscription, error) {
	coll, err := r.db.Collection(ctx, database.SubscriptionsCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	subs := []models.PushSubscription{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

func (r *Subscriptions) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	coll, err := r.db.Collection(ctx, database.SubscriptionsCollection)
	if err != nil {
		return err
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"sub.endpoint": endpoint}); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
