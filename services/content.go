package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inficom-solutions/portfolio-backend/database"
	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/inficom-solutions/portfolio-backend/media"
	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Form keys that drive image handling rather than a record field.
const (
	ImageField       = "image"
	RemoveImageField = "removeImage"
)

// MediaLifecycle uploads images and removes the ones a record stops using.
type MediaLifecycle interface {
	Upload(ctx context.Context, upload media.Upload) (string, error)
	Remove(ctx context.Context, ref string)
}

// Content implements the operations shared by every content type: listing,
// lookup, create, partial update and delete with image cleanup.
type Content[D models.Document] struct {
	schema models.Schema[D]
	store  database.Store[D]
	media  MediaLifecycle
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

func NewContent[D models.Document](schema models.Schema[D], store database.Store[D], lifecycle MediaLifecycle) *Content[D] {
	return &Content[D]{
		schema: schema,
		store:  store,
		media:  lifecycle,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: log.With().Str("service", schema.Collection).Logger(),
	}
}

func (c *Content[D]) Schema() models.Schema[D] {
	return c.schema
}

// List returns every record, newest first.
func (c *Content[D]) List(ctx context.Context) ([]D, error) {
	docs, err := c.store.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", c.schema.Collection, err)
	}
	return docs, nil
}

func (c *Content[D]) Get(ctx context.Context, id string) (D, error) {
	doc, err := c.store.FindByID(ctx, id)
	if err != nil {
		var zero D
		return zero, errs.NewDatabaseError("get", c.schema.Name, err)
	}
	return doc, nil
}

// Create validates form, uploads the attached image if any and stores the new
// record. Nothing is uploaded when validation fails.
func (c *Content[D]) Create(ctx context.Context, form models.Form, upload *media.Upload) (D, error) {
	var zero D
	doc := c.schema.New()

	for _, f := range c.schema.Fields {
		if f.Required && form.Blank(f.Name) {
			return zero, errs.NewMissingRequiredFieldError(f.Name)
		}
	}
	if err := c.apply(doc, form); err != nil {
		return zero, err
	}

	holder, managesImage := any(doc).(models.ImageHolder)
	if managesImage && upload == nil {
		if !form.Blank(ImageField) {
			holder.SetImage(form.Value(ImageField))
		} else if c.schema.ImageRequired {
			return zero, errs.NewMissingRequiredFieldError(ImageField)
		}
	}

	var uploaded string
	if managesImage && upload != nil {
		imageURL, err := c.media.Upload(ctx, *upload)
		if err != nil {
			return zero, err
		}
		holder.SetImage(imageURL)
		uploaded = imageURL
	}

	doc.SetID(c.newID())
	doc.Touch(c.now())
	if err := c.store.Add(ctx, doc); err != nil {
		c.discard(ctx, uploaded)
		return zero, errs.NewDatabaseError("create", c.schema.Name, err)
	}

	c.logger.Info().Str("id", doc.GetID()).Msg("Created")
	return doc, nil
}

// Update applies the fields present in form to an existing record. A new
// image replaces the old one, which is removed from the host before the
// upload. removeImage=true clears the image.
func (c *Content[D]) Update(ctx context.Context, id string, form models.Form, upload *media.Upload) (D, error) {
	var zero D
	doc, err := c.store.FindByID(ctx, id)
	if err != nil {
		return zero, errs.NewDatabaseError("get", c.schema.Name, err)
	}

	if err := c.apply(doc, form); err != nil {
		return zero, err
	}

	var uploaded string
	if holder, ok := any(doc).(models.ImageHolder); ok {
		removeImage, err := parseFlag(form, RemoveImageField)
		if err != nil {
			return zero, err
		}
		previous := holder.GetImage()

		switch {
		case upload != nil:
			if previous != "" {
				c.media.Remove(ctx, previous)
			}
			imageURL, err := c.media.Upload(ctx, *upload)
			if err != nil {
				return zero, err
			}
			holder.SetImage(imageURL)
			uploaded = imageURL
		case removeImage:
			if c.schema.ImageRequired {
				return zero, errs.NewInvalidFieldError(ImageField, "is required and cannot be removed")
			}
			if previous != "" {
				c.media.Remove(ctx, previous)
			}
			holder.SetImage("")
		case !form.Blank(ImageField):
			holder.SetImage(form.Value(ImageField))
		}
	}

	doc.Touch(c.now())
	if err := c.store.Update(ctx, doc); err != nil {
		c.discard(ctx, uploaded)
		return zero, errs.NewDatabaseError("update", c.schema.Name, err)
	}

	c.logger.Info().Str("id", id).Msg("Updated")
	return doc, nil
}

// Delete removes the record and then its image. It returns the confirmation
// message sent to clients.
func (c *Content[D]) Delete(ctx context.Context, id string) (string, error) {
	doc, err := c.store.Delete(ctx, id)
	if err != nil {
		return "", errs.NewDatabaseError("delete", c.schema.Name, err)
	}

	if holder, ok := any(doc).(models.ImageHolder); ok && holder.GetImage() != "" {
		c.media.Remove(ctx, holder.GetImage())
	}

	c.logger.Info().Str("id", id).Msg("Deleted")
	return fmt.Sprintf("%s deleted successfully", capitalize(c.schema.Name)), nil
}

func (c *Content[D]) apply(doc D, form models.Form) error {
	for _, f := range c.schema.Fields {
		if !form.Has(f.Name) {
			continue
		}
		if err := f.Apply(doc, form[f.Name]); err != nil {
			if errors.Is(err, models.ErrBlank) {
				return errs.NewInvalidFieldError(f.Name, "must not be blank")
			}
			return errs.NewInvalidFieldError(f.Name, err.Error())
		}
	}
	return nil
}

// discard removes an image uploaded by a request that then failed to persist.
func (c *Content[D]) discard(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	c.logger.Warn().Str("url", imageURL).Msg("Removing image of unsaved record")
	c.media.Remove(context.WithoutCancel(ctx), imageURL)
}

func parseFlag(form models.Form, name string) (bool, error) {
	v := form.Value(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.NewInvalidFieldError(name, "must be true or false")
	}
	return b, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
