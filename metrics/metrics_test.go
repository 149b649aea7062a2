package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/admin/api/posts/{id}", NormalizePath("/admin/api/posts/65f0c2a1b3d4e5f6a7b8c9d0"))
	assert.Equal(t, "/api/posts/{id}/x", NormalizePath("/api/posts/65f0c2a1b3d4e5f6a7b8c9d0/x"))
	assert.Equal(t, "/api/posts", NormalizePath("/api/posts"))
	assert.Equal(t, "/api/posts/123", NormalizePath("/api/posts/123"))
}

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("invalid"))
	RecordLogin("invalid")
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("invalid")))
}

func TestRecordUpload(t *testing.T) {
	ok := testutil.ToFloat64(MediaUploads.WithLabelValues("ok"))
	failed := testutil.ToFloat64(MediaUploads.WithLabelValues("failed"))
	RecordUpload(true)
	RecordUpload(false)
	RecordUpload(false)
	assert.Equal(t, ok+1, testutil.ToFloat64(MediaUploads.WithLabelValues("ok")))
	assert.Equal(t, failed+2, testutil.ToFloat64(MediaUploads.WithLabelValues("failed")))
}
