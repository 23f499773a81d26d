package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/memorial-gallery/pkg/config"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
)

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return appErrors.FromError(err).Code
}

func TestStaticPasswordChecker(t *testing.T) {
	checker := NewCredentialChecker(config.UploadConfig{Password: "forever"}, nil)

	assert.NoError(t, checker.Check("forever"))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(checker.Check("Forever")))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(checker.Check("")))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(checker.Check("forever ")))
}

func TestBcryptPasswordChecker(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("forever"), bcrypt.MinCost)
	require.NoError(t, err)

	checker := NewCredentialChecker(config.UploadConfig{Password: "ignored", PasswordHash: string(hash)}, nil)
	assert.NoError(t, checker.Check("forever"))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(checker.Check("ignored")))

	broken := NewBcryptPasswordChecker("not-a-hash")
	assert.Equal(t, appErrors.ErrUploadNotConfigured.Code, errorCode(broken.Check("forever")))
}

func TestUnconfiguredChecker(t *testing.T) {
	checker := NewCredentialChecker(config.UploadConfig{}, nil)
	err := checker.Check("anything")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUploadNotConfigured.Code, errorCode(err))
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}
