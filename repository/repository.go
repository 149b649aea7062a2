// Package repository holds the MongoDB-backed stores and their in-memory
// counterparts used with STORE=memory and in tests.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Collections resolves a collection on the shared database handle.
// *database.DB satisfies it.
type Collections interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
