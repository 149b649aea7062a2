package models

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushSubscription is a feed reader's browser push registration, keyed by endpoint.
type PushSubscription struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Sub       webpush.Subscription `bson:"sub" json:"sub"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
