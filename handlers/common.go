package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"newsdesk/auth"
	"newsdesk/media"
	"newsdesk/middleware"
	"newsdesk/posts"

	"github.com/gin-gonic/gin"
)

// respondError translates a service error into its HTTP status. Unexpected errors
// are logged with the request id and reported with fallback only.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var verr *posts.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"fields":  verr.Fields,
		})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "message": "Request body too large"})
	case errors.Is(err, posts.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid username or password"})
	case errors.Is(err, media.ErrUploadFailed):
		slog.Error("image upload failed", "request_id", middleware.RequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error uploading image"})
	default:
		slog.Error("request failed", "request_id", middleware.RequestID(c), "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": fallback})
	}
}
