package service

import (
	"crypto/subtle"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/memorial-gallery/pkg/config"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
)

// CredentialChecker verifies the shared upload secret.
type CredentialChecker interface {
	Check(secret string) error
}

// StaticPasswordChecker compares against a plain configured password.
type StaticPasswordChecker struct {
	password []byte
}

// NewStaticPasswordChecker constructs a checker for password.
func NewStaticPasswordChecker(password string) *StaticPasswordChecker {
	return &StaticPasswordChecker{password: []byte(password)}
}

// Check implements CredentialChecker.
func (c *StaticPasswordChecker) Check(secret string) error {
	if c == nil || len(c.password) == 0 {
		return appErrors.Clone(appErrors.ErrUploadNotConfigured, "")
	}
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), c.password) != 1 {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid upload password")
	}
	return nil
}

// BcryptPasswordChecker compares against a bcrypt hash.
type BcryptPasswordChecker struct {
	hash []byte
}

// NewBcryptPasswordChecker constructs a checker for a bcrypt hash.
func NewBcryptPasswordChecker(hash string) *BcryptPasswordChecker {
	return &BcryptPasswordChecker{hash: []byte(hash)}
}

// Check implements CredentialChecker.
func (c *BcryptPasswordChecker) Check(secret string) error {
	if c == nil || len(c.hash) == 0 {
		return appErrors.Clone(appErrors.ErrUploadNotConfigured, "")
	}
	if secret == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid upload password")
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(secret)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return appErrors.Clone(appErrors.ErrUnauthorized, "invalid upload password")
		}
		return appErrors.Wrap(err, appErrors.ErrUploadNotConfigured.Code, appErrors.ErrUploadNotConfigured.Status, "upload password hash is invalid")
	}
	return nil
}

type unconfiguredChecker struct{}

func (unconfiguredChecker) Check(string) error {
	return appErrors.Clone(appErrors.ErrUploadNotConfigured, "")
}

// NewCredentialChecker picks the checker for the upload configuration. A
// bcrypt hash wins over a plain password; with neither, every check fails
// with UPLOAD_NOT_CONFIGURED.
func NewCredentialChecker(cfg config.UploadConfig, logger *zap.Logger) CredentialChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			logger.Error("UPLOAD_PASSWORD_HASH is not a bcrypt hash", zap.Error(err))
		}
		return NewBcryptPasswordChecker(cfg.PasswordHash)
	case cfg.Password != "":
		return NewStaticPasswordChecker(cfg.Password)
	default:
		logger.Warn("no upload password configured; uploads are disabled")
		return unconfiguredChecker{}
	}
}
