package repository

import (
	"context"
	"fmt"

	"newsdesk/database"
	"newsdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Posts struct {
	db Collections
}

func NewPosts(db Collections) *Posts {
	return &Posts{db: db}
}

func (r *Posts) Insert(ctx context.Context, post *models.Post) error {
	coll, err := r.db.Collection(ctx, database.PostsCollection)
	if err != nil {
		return err
	}

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", translate(err))
	}
	return nil
}

// List returns every post, newest first. Ties on createdAt fall back to _id.
func (r *Posts) List(ctx context.Context) ([]models.Post, error) {
	coll, err := r.db.Collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *Posts) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	coll, err := r.db.Collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// Update applies patch atomically and returns the document after the update.
func (r *Posts) Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error) {
	if patch.Empty() {
		return r.Get(ctx, id)
	}

	coll, err := r.db.Collection(ctx, database.PostsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patchDocument(patch)}, opts).Decode(&post)
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *Posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.db.Collection(ctx, database.PostsCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func patchDocument(p models.PostPatch) bson.D {
	set := bson.D{}
	add := func(key string, v *string) {
		if v != nil {
			set = append(set, bson.E{Key: key, Value: *v})
		}
	}
	add("title", p.Title)
	add("summary", p.Summary)
	add("content", p.Content)
	add("source", p.Source)
	add("sourceLink", p.SourceLink)
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*p.Status)})
	}
	add("imageUrl", p.ImageURL)
	return set
}
