package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/memorial-gallery/internal/service"
	"github.com/noah-isme/memorial-gallery/pkg/config"
)

type trackingBody struct {
	io.Reader
	read bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	b.read = true
	return b.Reader.Read(p)
}

func (b *trackingBody) Close() error { return nil }

func newUploadRouter(checker service.CredentialChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", UploadAuth(checker), func(c *gin.Context) {
		_, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusCreated)
	})
	return r
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestUploadAuth(t *testing.T) {
	checker := service.NewCredentialChecker(config.UploadConfig{Password: "s3cret"}, nil)
	r := newUploadRouter(checker)

	cases := []struct {
		name     string
		password string
		status   int
		code     string
	}{
		{name: "correct", password: "s3cret", status: http.StatusCreated},
		{name: "wrong", password: "guess", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "missing", password: "", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := &trackingBody{Reader: strings.NewReader("payload")}
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			if tc.password != "" {
				req.Header.Set(UploadPasswordHeader, tc.password)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.code != "" {
				assert.Equal(t, tc.code, errorCodeOf(t, w))
				assert.False(t, body.read)
			}
		})
	}
}

func TestUploadAuthNotConfigured(t *testing.T) {
	r := newUploadRouter(service.NewCredentialChecker(config.UploadConfig{}, nil))
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))
	req.Header.Set(UploadPasswordHeader, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "UPLOAD_NOT_CONFIGURED", errorCodeOf(t, w))
}
