package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusVerified   Status = "verified"
	StatusUnverified Status = "unverified"
	StatusFalse      Status = "false"
)

// Statuses lists every accepted verification status.
var Statuses = []Status{StatusVerified, StatusUnverified, StatusFalse}

func (s Status) Valid() bool {
	switch s {
	case StatusVerified, StatusUnverified, StatusFalse:
		return true
	}
	return false
}

// ParseStatus accepts only the enumerated values. It never coerces.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("status must be one of verified, unverified, false: got %q", s)
	}
	return st, nil
}

type Post struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Summary    string             `bson:"summary" json:"summary"`
	Content    string             `bson:"content" json:"content"`
	Source     string             `bson:"source" json:"source"`
	SourceLink string             `bson:"sourceLink,omitempty" json:"sourceLink,omitempty"`
	Status     Status             `bson:"status" json:"status"`
	ImageURL   *string            `bson:"imageUrl" json:"imageUrl"` // nil when no image is attached
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// PostPatch holds the replaceable fields of a post. Nil means "leave unchanged".
// ID and CreatedAt are deliberately absent.
type PostPatch struct {
	Title      *string
	Summary    *string
	Content    *string
	Source     *string
	SourceLink *string
	Status     *Status
	ImageURL   *string
}

func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Summary == nil && p.Content == nil && p.Source == nil &&
		p.SourceLink == nil && p.Status == nil && p.ImageURL == nil
}

// Apply returns a copy of post with the patch applied.
func (p PostPatch) Apply(post Post) Post {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Summary != nil {
		post.Summary = *p.Summary
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Source != nil {
		post.Source = *p.Source
	}
	if p.SourceLink != nil {
		post.SourceLink = *p.SourceLink
	}
	if p.Status != nil {
		post.Status = *p.Status
	}
	if p.ImageURL != nil {
		url := *p.ImageURL
		post.ImageURL = &url
	}
	return post
}
