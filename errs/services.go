package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-Party Service Errors
var (
	ErrUpload             = errors.New("image upload failed")
	ErrMediaRemove        = errors.New("image removal failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewUploadError(provider string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrUpload,
		Details:    fmt.Sprintf("%s rejected the upload", provider),
		Cause:      cause,
		Field:      "image",
	}
}

func NewMediaRemoveError(provider, id string, cause error) error {
	return fmt.Errorf("%s %s: %w: %w", provider, id, ErrMediaRemove, cause)
}

func NewServiceUnavailableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is unavailable", service),
		Cause:      cause,
	}
}

func NewConfigError(key string) error {
	return fmt.Errorf("%w: %s", ErrConfigMissing, key)
}

func NewInvalidConfigError(key, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrConfigInvalid, key, reason)
}

func IsUploadError(err error) bool {
	return errors.Is(err, ErrUpload)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}
