package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/memorial-gallery/internal/service"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/response"
)

// UploadPasswordHeader carries the shared upload secret.
const UploadPasswordHeader = "X-Upload-Password"

// UploadAuth rejects requests whose upload password does not check out. It
// runs before the handler touches the body, so a rejected upload is never read.
func UploadAuth(checker service.CredentialChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUploadNotConfigured, ""))
			c.Abort()
			return
		}
		if err := checker.Check(c.GetHeader(UploadPasswordHeader)); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
