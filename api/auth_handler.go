package api

import (
	"net/http"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/inficom-solutions/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      *services.Authenticator
}

func newAuthHandler(auth *services.Authenticator) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

// LoginRequest holds the administrator credentials
type LoginRequest struct {
	Email    string `json:"email" example:"admin@example.com"`
	Password string `json:"password"`
}

// login exchanges credentials for a bearer token
// @Summary Log in
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} services.Session
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		session, err := h.auth.Login(req.Email, req.Password)
		if err != nil {
			h.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("Failed login attempt")
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, session)
	}
}

// me returns the administrator the token belongs to
// @Summary Current admin
// @Produce json
// @Success 200 {object} services.Admin
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ctxGetClaims(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteJSON(w, services.Admin{Email: claims.Email})
	}
}
