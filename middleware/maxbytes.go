package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form fields and boundaries around the image part.
const multipartOverhead = 1 << 20

// MaxBody caps the request body at limit plus form overhead. Reads past the cap
// fail and the handler reports the request as too large.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
		}
		c.Next()
	}
}
