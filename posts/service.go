// Package posts owns the news post lifecycle: validation, the optional image
// upload, and create/list/update/delete against the durable store.
package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"newsdesk/media"
	"newsdesk/metrics"
	"newsdesk/models"
	"newsdesk/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence port. repository.Posts and repository.MemoryPosts satisfy it.
type Store interface {
	Insert(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Publisher is told about writes after they are persisted. Implementations must not block.
type Publisher interface {
	PostCreated(post models.Post)
	PostUpdated(post models.Post)
	PostDeleted(id string)
}

// Image is an uploaded file waiting to be stored.
type Image struct {
	Reader      io.Reader
	ContentType string
}

type CreateInput struct {
	Title      string `json:"title" validate:"required"`
	Summary    string `json:"summary" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Source     string `json:"source" validate:"required"`
	SourceLink string `json:"sourceLink" validate:"omitempty,url"`
	// Status may be empty, which means unverified.
	Status string `json:"status" validate:"omitempty,oneof=verified unverified false"`
}

// UpdateInput carries only the supplied fields. Nil leaves a field unchanged;
// an empty Status is treated as not supplied.
type UpdateInput struct {
	Title      *string
	Summary    *string
	Content    *string
	Source     *string
	SourceLink *string
	Status     *string
}

type Service struct {
	store      Store
	media      media.Resolver
	validate   *validator.Validate
	now        func() time.Time
	publishers []Publisher
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publishers = append(s.publishers, p) }
}

func NewService(store Store, resolver media.Resolver, opts ...Option) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s := &Service{
		store:    store,
		media:    resolver,
		validate: v,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in, uploads img when present, and only then persists the post.
// An upload failure leaves nothing behind in the store.
func (s *Service) Create(ctx context.Context, in CreateInput, img *Image) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Source = strings.TrimSpace(in.Source)
	in.SourceLink = strings.TrimSpace(in.SourceLink)
	in.Status = strings.TrimSpace(in.Status)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}

	verr := s.structErrors(in)
	checkImage(verr, img)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	status := models.StatusUnverified
	if in.Status != "" {
		status = models.Status(in.Status)
	}

	post := &models.Post{
		Title:      in.Title,
		Summary:    in.Summary,
		Content:    in.Content,
		Source:     in.Source,
		SourceLink: in.SourceLink,
		Status:     status,
		// Mongo stores milliseconds; truncating keeps the returned value equal to the stored one.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if img != nil {
		url, err := s.media.Store(ctx, img.Reader, img.ContentType)
		if err != nil {
			return nil, err
		}
		post.ImageURL = &url
	}

	if err := s.store.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.RecordPostWrite("create")
	slog.Info("post created", "id", post.ID.Hex(), "status", post.Status, "has_image", post.ImageURL != nil)
	for _, p := range s.publishers {
		p.PostCreated(*post)
	}
	return post, nil
}

// List returns every post, newest first. There is no pagination.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	post, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, storeError("get post", err)
	}
	return post, nil
}

// Update replaces only the supplied fields. The id is resolved before any image is
// uploaded, so an unknown id never causes an upload. A malformed id is ErrNotFound.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, img *Image) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	patch, err := s.buildPatch(in, img)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, oid); err != nil {
		return nil, storeError("update post", err)
	}

	if img != nil {
		url, err := s.media.Store(ctx, img.Reader, img.ContentType)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}

	post, err := s.store.Update(ctx, oid, patch)
	if err != nil {
		return nil, storeError("update post", err)
	}

	metrics.RecordPostWrite("update")
	slog.Info("post updated", "id", post.ID.Hex(), "status", post.Status)
	for _, p := range s.publishers {
		p.PostUpdated(*post)
	}
	return post, nil
}

// Delete is a hard delete. Deleting an unknown id fails with ErrNotFound.
// The stored image, if any, is left in object storage.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		return storeError("delete post", err)
	}

	metrics.RecordPostWrite("delete")
	slog.Info("post deleted", "id", id)
	for _, p := range s.publishers {
		p.PostDeleted(id)
	}
	return nil
}

func (s *Service) buildPatch(in UpdateInput, img *Image) (models.PostPatch, error) {
	var (
		patch models.PostPatch
		verr  = &ValidationError{}
	)

	required := func(field string, v *string, trim bool) *string {
		if v == nil {
			return nil
		}
		val := *v
		if trim {
			val = strings.TrimSpace(val)
		}
		if strings.TrimSpace(val) == "" {
			verr.add(field, "is required")
			return nil
		}
		return &val
	}
	patch.Title = required("title", in.Title, true)
	patch.Summary = required("summary", in.Summary, true)
	patch.Content = required("content", in.Content, false)
	patch.Source = required("source", in.Source, true)

	if in.SourceLink != nil {
		link := strings.TrimSpace(*in.SourceLink)
		if link != "" && s.validate.Var(link, "url") != nil {
			verr.add("sourceLink", "must be a valid URL")
		} else {
			patch.SourceLink = &link
		}
	}

	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		st, err := models.ParseStatus(strings.TrimSpace(*in.Status))
		if err != nil {
			verr.add("status", "must be one of verified unverified false")
		} else {
			patch.Status = &st
		}
	}

	checkImage(verr, img)
	if err := verr.orNil(); err != nil {
		return models.PostPatch{}, err
	}
	return patch, nil
}

func (s *Service) structErrors(v interface{}) *ValidationError {
	verr := &ValidationError{}
	err := s.validate.Struct(v)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("input", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			verr.add(fe.Field(), "is required")
		case "oneof":
			verr.add(fe.Field(), "must be one of "+fe.Param())
		case "url":
			verr.add(fe.Field(), "must be a valid URL")
		default:
			verr.add(fe.Field(), "is invalid")
		}
	}
	return verr
}

func checkImage(verr *ValidationError, img *Image) {
	if img != nil && !strings.HasPrefix(img.ContentType, "image/") {
		verr.add("image", "must be an image")
	}
}

func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
