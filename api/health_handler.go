package api

import (
	"net/http"
	"time"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	startupTime time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	return healthHandler{
		responder:   NewResponder(log.With().Str("handlerName", "healthHandler").Logger()),
		startupTime: startupTime,
	}
}

// HealthResponse reports that the server is up
type HealthResponse struct {
	Status        string    `json:"status" example:"OK"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
}

// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		h.responder.WriteJSON(w, HealthResponse{
			Status:        "OK",
			Timestamp:     now,
			UptimeSeconds: int64(now.Sub(h.startupTime).Seconds()),
		})
	}
}

func (h healthHandler) notFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteMessage(w, http.StatusNotFound, "Route not found")
	}
}

func (h healthHandler) methodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteError(w, errs.NewApiErr(http.StatusMethodNotAllowed, "method not allowed"))
	}
}
