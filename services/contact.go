package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// ContactRequest is an enquiry submitted through the site's contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service"`
	Message string `json:"message"`
}

func (r *ContactRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Service = strings.TrimSpace(r.Service)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate checks the request and returns the first problem as a field error.
func (r ContactRequest) Validate() error {
	switch {
	case r.Name == "":
		return errs.NewMissingRequiredFieldError("name")
	case utf8.RuneCountInString(r.Name) < 2:
		return errs.NewInvalidFieldError("name", "must be at least 2 characters")
	case r.Email == "":
		return errs.NewMissingRequiredFieldError("email")
	case !validEmail(r.Email):
		return errs.NewInvalidFieldError("email", "must be a valid email address")
	case utf8.RuneCountInString(r.Phone) > 20:
		return errs.NewInvalidFieldError("phone", "cannot be more than 20 characters")
	case r.Service == "":
		return errs.NewMissingRequiredFieldError("service")
	case r.Message == "":
		return errs.NewMissingRequiredFieldError("message")
	case utf8.RuneCountInString(r.Message) < 10:
		return errs.NewInvalidFieldError("message", "must be at least 10 characters")
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New enquiry: {{.Service}}</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>
{{end}}<p><strong>Received:</strong> {{.Received}}</p>
<p>{{.Message}}</p>
`))

// ContactRelay forwards contact form submissions to the site owners.
type ContactRelay struct {
	mailer     Mailer
	recipients []string
	now        func() time.Time
}

func NewContactRelay(mailer Mailer, recipients []string) *ContactRelay {
	return &ContactRelay{mailer: mailer, recipients: recipients, now: time.Now}
}

func (c *ContactRelay) Submit(ctx context.Context, req ContactRequest) error {
	req.normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := contactTemplate.Execute(&body, struct {
		ContactRequest
		Received string
	}{req, c.now().UTC().Format(time.RFC1123)})
	if err != nil {
		return errs.NewInternalErrorWithCause("could not render contact email", err)
	}

	email := Email{
		Subject: fmt.Sprintf("New enquiry from %s: %s", req.Name, req.Service),
		Html:    body.String(),
		Text:    fmt.Sprintf("%s <%s> %s\n\n%s", req.Name, req.Email, req.Phone, req.Message),
		To:      c.recipients,
		ReplyTo: req.Email,
	}
	if err := c.mailer.Send(ctx, email); err != nil {
		log.Error().Err(err).Str("service", req.Service).Msg("Failed to relay contact request")
		return errs.NewServiceUnavailableError("email", err)
	}
	return nil
}
