package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrBlank is returned by a field when a required value was submitted empty.
var ErrBlank = errors.New("must not be blank")

// Document is implemented by every content record.
type Document interface {
	GetID() string
	SetID(id string)
	Touch(now time.Time)
}

// ImageHolder is implemented by records that own a single remote image.
type ImageHolder interface {
	GetImage() string
	SetImage(url string)
}

// Form holds submitted values keyed by field name. A key that is present
// means the client sent the field, even if the value is empty.
type Form map[string][]string

func (f Form) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Value returns the first submitted value for name, trimmed.
func (f Form) Value(name string) string {
	values := f[name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// Blank reports whether name was not sent or only sent empty.
func (f Form) Blank(name string) bool {
	for _, v := range f[name] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Field binds one form field onto a record.
type Field[D any] struct {
	Name     string
	Required bool
	Apply    func(doc D, values []string) error
}

// Schema describes one content type: how to build it, which fields it accepts
// and whether it must carry an image when created.
type Schema[D Document] struct {
	Name          string
	Collection    string
	New           func() D
	Fields        []Field[D]
	ImageRequired bool
}

// ManagesImage reports whether records of this schema own a remote image.
func (s Schema[D]) ManagesImage() bool {
	_, ok := any(s.New()).(ImageHolder)
	return ok
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// Text binds a trimmed string field. maxLen of zero means unlimited.
func Text[D any](name string, required bool, maxLen int, set func(D, string)) Field[D] {
	return Field[D]{
		Name:     name,
		Required: required,
		Apply: func(doc D, values []string) error {
			v := first(values)
			if required && v == "" {
				return ErrBlank
			}
			if maxLen > 0 && utf8.RuneCountInString(v) > maxLen {
				return fmt.Errorf("cannot be more than %d characters", maxLen)
			}
			set(doc, v)
			return nil
		},
	}
}

// Link binds an absolute http(s) URL.
func Link[D any](name string, required bool, set func(D, string)) Field[D] {
	return Field[D]{
		Name:     name,
		Required: required,
		Apply: func(doc D, values []string) error {
			v := first(values)
			if v == "" {
				if required {
					return ErrBlank
				}
				set(doc, "")
				return nil
			}
			u, err := url.ParseRequestURI(v)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return errors.New("must be an absolute http(s) URL")
			}
			set(doc, v)
			return nil
		},
	}
}

// NumberRange binds a number constrained to [min, max]. Fractions are kept.
func NumberRange[D any](name string, min, max float64, set func(D, float64)) Field[D] {
	return Field[D]{
		Name: name,
		Apply: func(doc D, values []string) error {
			v := first(values)
			if v == "" {
				return nil
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return errors.New("must be a number")
			}
			if n < min || n > max {
				return fmt.Errorf("must be between %g and %g", min, max)
			}
			set(doc, n)
			return nil
		},
	}
}

// Enum binds a value that must be one of allowed.
func Enum[D any](name string, allowed []string, set func(D, string)) Field[D] {
	return Field[D]{
		Name: name,
		Apply: func(doc D, values []string) error {
			v := first(values)
			if v == "" {
				return nil
			}
			for _, a := range allowed {
				if v == a {
					set(doc, v)
					return nil
				}
			}
			return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
		},
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Color binds an optional CSS hex colour.
func Color[D any](name string, set func(D, string)) Field[D] {
	return Field[D]{
		Name: name,
		Apply: func(doc D, values []string) error {
			v := first(values)
			if v != "" && !hexColor.MatchString(v) {
				return errors.New("must be a hex colour such as #1abc9c")
			}
			set(doc, v)
			return nil
		},
	}
}

// List binds a string list. Clients may repeat the field or send a single
// JSON array.
func List[D any](name string, set func(D, []string)) Field[D] {
	return Field[D]{
		Name: name,
		Apply: func(doc D, values []string) error {
			if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
				var items []string
				if err := json.Unmarshal([]byte(values[0]), &items); err != nil {
					return errors.New("must be a JSON array of strings")
				}
				values = items
			}
			items := make([]string, 0, len(values))
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					items = append(items, v)
				}
			}
			set(doc, items)
			return nil
		},
	}
}

// JSON binds a field submitted as a JSON document.
func JSON[D any, V any](name string, set func(D, V)) Field[D] {
	return Field[D]{
		Name: name,
		Apply: func(doc D, values []string) error {
			var v V
			raw := first(values)
			if raw == "" {
				set(doc, v)
				return nil
			}
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return errors.New("must be valid JSON")
			}
			set(doc, v)
			return nil
		},
	}
}
