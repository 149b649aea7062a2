package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"bogus", "", "Verified", "true"} {
		_, err := ParseStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestPostPatch_ApplyOnlyTouchesSuppliedFields(t *testing.T) {
	img := "https://img.example/a.png"
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	post := Post{
		ID:        primitive.NewObjectID(),
		Title:     "T",
		Summary:   "S",
		Content:   "C",
		Source:    "X",
		Status:    StatusUnverified,
		ImageURL:  &img,
		CreatedAt: created,
	}

	verified := StatusVerified
	got := PostPatch{Status: &verified}.Apply(post)

	assert.Equal(t, StatusVerified, got.Status)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "S", got.Summary)
	assert.Equal(t, "C", got.Content)
	assert.Equal(t, "X", got.Source)
	assert.Equal(t, &img, got.ImageURL)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, StatusUnverified, post.Status, "original must not change")
}

func TestPostPatch_Empty(t *testing.T) {
	assert.True(t, PostPatch{}.Empty())
	title := "x"
	assert.False(t, PostPatch{Title: &title}.Empty())
}
