package repository

import (
	"context"
	"fmt"

	"newsdesk/database"
	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	db Collections
}

func NewUsers(db Collections) *Users {
	return &Users{db: db}
}

// FindByUsername is an exact, case-sensitive match.
func (r *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	coll, err := r.db.Collection(ctx, database.UsersCollection)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := coll.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Insert relies on the unique username index; a second insert fails with ErrDuplicate.
func (r *Users) Insert(ctx context.Context, user *models.User) error {
	coll, err := r.db.Collection(ctx, database.UsersCollection)
	if err != nil {
		return err
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, user); err != nil {
		if err := translate(err); err == ErrDuplicate {
			return err
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
