package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/inficom-solutions/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// resourceHandler exposes one content type over HTTP.
type resourceHandler[D models.Document] struct {
	responder Responder
	logger    zerolog.Logger
	content   *services.Content[D]
}

func newResourceHandler[D models.Document](content *services.Content[D]) resourceHandler[D] {
	logger := log.With().Str("handlerName", content.Schema().Collection+"Handler").Logger()

	return resourceHandler[D]{
		responder: NewResponder(logger),
		logger:    logger,
		content:   content,
	}
}

// list returns every record, newest first
// @Summary List records
// @Produce json
// @Success 200 {array} object
// @Failure 500 {object} ErrorResponse
// @Router /api/{resource} [get]
func (h resourceHandler[D]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.content.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, docs)
	}
}

// get returns one record
// @Summary Get record
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Success 200 {object} object
// @Failure 400 {object} ErrorResponse "Invalid id"
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [get]
func (h resourceHandler[D]) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, err := h.content.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, doc)
	}
}

// create validates the submitted fields and stores a new record
// @Summary Create record
// @Accept multipart/form-data,application/json
// @Produce json
// @Param image formData file false "Image"
// @Success 201 {object} object
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Upload or store failure"
// @Router /api/{resource} [post]
func (h resourceHandler[D]) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := readForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, err := h.content.Create(r.Context(), form, ctxGetUpload(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, doc)
	}
}

// update applies the submitted fields to an existing record
// @Summary Update record
// @Accept multipart/form-data,application/json
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Param image formData file false "Replacement image"
// @Param removeImage formData bool false "Clear the current image"
// @Success 200 {object} object
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [put]
func (h resourceHandler[D]) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form, err := readForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, err := h.content.Update(r.Context(), id, form, ctxGetUpload(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, doc)
	}
}

// remove deletes a record and its image
// @Summary Delete record
// @Produce json
// @Param id path string true "Record ID" format(uuid)
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/{resource}/{id} [delete]
func (h resourceHandler[D]) remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		message, err := h.content.Delete(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, MessageResponse{Message: message})
	}
}
