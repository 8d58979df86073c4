package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/inficom-solutions/portfolio-backend/models"
)

const maxJSONBody = 1 << 20

// readForm collects submitted fields from a multipart, urlencoded or JSON body.
func readForm(w http.ResponseWriter, r *http.Request) (models.Form, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(8 << 20); err != nil {
				return nil, errs.NewMalformedPayloadError("multipart form", err)
			}
		}
		return models.Form(r.MultipartForm.Value), nil
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return nil, errs.NewMalformedPayloadError("form", err)
		}
		return models.Form(r.PostForm), nil
	case "application/json", "":
		return readJSONForm(w, r)
	default:
		return nil, errs.NewBadRequestError("unsupported content type " + mediaType)
	}
}

func readJSONForm(w http.ResponseWriter, r *http.Request) (models.Form, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("JSON", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return models.Form{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errs.NewMalformedPayloadError("JSON", err)
	}

	form := models.Form{}
	for name, raw := range fields {
		form[name] = jsonValues(raw)
	}
	return form, nil
}

// jsonValues flattens one JSON value into form values. Strings, numbers and
// booleans become a single value, arrays of strings one value per element,
// and anything else stays as its JSON text.
func jsonValues(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return []string{""}
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return []string{s}
		}
	case len(trimmed) > 0 && trimmed[0] == '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err == nil {
			return items
		}
	}
	return []string{string(trimmed)}
}

// readJSON decodes a JSON request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(dst); err != nil {
		return errs.NewMalformedPayloadError("JSON", err)
	}
	return nil
}

// parseID validates a record id taken from the URL.
func parseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.NewBadRequestError("missing id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errs.NewBadRequestError("invalid id")
	}
	return id.String(), nil
}
