// Package media stores post images in external object storage and hands back the
// public URL that is saved on the post.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed aborts the create or update that supplied the image.
var ErrUploadFailed = errors.New("image upload failed")

// Resolver persists an image and returns a stable, publicly fetchable URL.
type Resolver interface {
	Store(ctx context.Context, r io.Reader, contentType string) (string, error)
}

// Disabled is used when no object storage is configured. Posts without an image
// still work; any image is rejected.
type Disabled struct{}

func (Disabled) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	return "", errors.Join(ErrUploadFailed, errors.New("object storage is not configured"))
}
