package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first so a failure can still change the status code
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteMessage writes a {"message": ...} body.
func (r Responder) WriteMessage(w http.ResponseWriter, status int, message string) {
	r.WriteJSONStatus(w, status, map[string]string{"message": message})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Message: "An unexpected error occurred",
			Status:  "error",
		})
		return
	}

	response := ErrorResponse{
		Message: apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
	}
	switch {
	case apiErr.StatusCode >= http.StatusInternalServerError:
		// Causes of server-side failures stay in the log
		r.logger.Error().Str("error", apiErr.GetFullError()).Str("kind", errorKind(apiErr)).Int("status", apiErr.StatusCode).Msg("request failed")
	case errs.IsAuthError(apiErr):
		r.logger.Info().Str("error", apiErr.GetFullError()).Msg("request rejected")
	default:
		r.logger.Debug().Str("kind", errorKind(apiErr)).Str("field", apiErr.Field).Int("status", apiErr.StatusCode).Msg("invalid request")
	}
	if apiErr.StatusCode < http.StatusInternalServerError && apiErr.Details != "" {
		response.Details = apiErr.Details
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// errorKind names the failure class of err for the logs.
func errorKind(err error) string {
	switch {
	case errs.IsAlreadyExists(err):
		return "conflict"
	case errs.IsNotFound(err):
		return "not_found"
	case errs.IsDatabaseError(err):
		return "database"
	case errs.IsUploadError(err):
		return "upload"
	case errs.IsUnsupportedMediaTypeError(err):
		return "unsupported_media_type"
	case errs.IsMaxBodySizeExceededError(err):
		return "body_too_large"
	case errs.IsMalformedPayloadError(err):
		return "malformed_payload"
	case errs.IsValidation(err):
		return "validation"
	default:
		return "other"
	}
}
