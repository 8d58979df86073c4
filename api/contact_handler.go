package api

import (
	"net/http"

	"github.com/inficom-solutions/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	relay     *services.ContactRelay
}

func newContactHandler(relay *services.ContactRelay) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		relay:     relay,
	}
}

// submit relays a contact form enquiry by email
// @Summary Send enquiry
// @Accept json
// @Produce json
// @Param enquiry body services.ContactRequest true "Enquiry"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/contact [post]
func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.ContactRequest
		if err := readJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.relay.Submit(r.Context(), req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusAccepted, MessageResponse{Message: "Thanks for reaching out, we will be in touch soon"})
	}
}
