package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"newsdesk/posts"

	"github.com/gin-gonic/gin"
)

// multipartMemory is how much of a form is buffered in memory before spilling to disk.
const multipartMemory = 8 << 20

type Posts struct {
	svc       *posts.Service
	maxUpload int64
}

func NewPosts(svc *posts.Service, maxUpload int64) *Posts {
	return &Posts{svc: svc, maxUpload: maxUpload}
}

func (h *Posts) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching posts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": list})
}

func (h *Posts) Get(c *gin.Context) {
	post, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error fetching post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *Posts) Create(c *gin.Context) {
	if err := parseForm(c); err != nil {
		respondError(c, err, "Error creating post")
		return
	}

	in := posts.CreateInput{
		Title:      c.PostForm("title"),
		Summary:    c.PostForm("summary"),
		Content:    c.PostForm("content"),
		Source:     c.PostForm("source"),
		SourceLink: c.PostForm("sourceLink"),
		Status:     c.PostForm("status"),
	}

	img, closeImg, err := h.image(c)
	if err != nil {
		respondError(c, err, "Error creating post")
		return
	}
	defer closeImg()

	// A client disconnect must not abandon an upload or write halfway.
	post, err := h.svc.Create(context.WithoutCancel(c.Request.Context()), in, img)
	if err != nil {
		respondError(c, err, "Error creating post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Post created successfully",
		"post":    post,
	})
}

// Update applies only the form fields that are present in the request.
func (h *Posts) Update(c *gin.Context) {
	if err := parseForm(c); err != nil {
		respondError(c, err, "Error updating post")
		return
	}

	in := posts.UpdateInput{
		Title:      optionalField(c, "title"),
		Summary:    optionalField(c, "summary"),
		Content:    optionalField(c, "content"),
		Source:     optionalField(c, "source"),
		SourceLink: optionalField(c, "sourceLink"),
		Status:     optionalField(c, "status"),
	}

	img, closeImg, err := h.image(c)
	if err != nil {
		respondError(c, err, "Error updating post")
		return
	}
	defer closeImg()

	post, err := h.svc.Update(context.WithoutCancel(c.Request.Context()), c.Param("id"), in, img)
	if err != nil {
		respondError(c, err, "Error updating post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *Posts) Delete(c *gin.Context) {
	if err := h.svc.Delete(context.WithoutCancel(c.Request.Context()), c.Param("id")); err != nil {
		respondError(c, err, "Error deleting post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted successfully"})
}

// image opens the optional "image" part. An absent or empty file means no image.
func (h *Posts) image(c *gin.Context) (*posts.Image, func(), error) {
	noop := func() {}

	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	if fh.Size == 0 {
		return nil, noop, nil
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return nil, noop, &http.MaxBytesError{Limit: h.maxUpload}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &posts.Image{Reader: f, ContentType: contentType(fh)}, func() { _ = f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

// parseForm parses multipart or urlencoded bodies up front so that size errors
// are reported instead of silently yielding empty fields.
func parseForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &posts.ValidationError{Fields: map[string]string{"form": "is not a valid form body"}}
}

func optionalField(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}
