package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/response"
)

// multipartOverhead leaves room for boundaries and part headers around the file.
const multipartOverhead int64 = 1 << 20

// BodyLimit caps the request body at limit bytes plus multipart overhead.
// Requests declaring a larger Content-Length are refused up front.
func BodyLimit(limit int64) gin.HandlerFunc {
	max := limit + multipartOverhead
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > max {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "request body too large"))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
