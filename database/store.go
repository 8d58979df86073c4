package database

import (
	"context"

	"github.com/inficom-solutions/portfolio-backend/models"
)

// Store persists one kind of document. Lookups of unknown ids return an
// error wrapping errs.ErrNotFound.
type Store[D models.Document] interface {
	// FindAll returns every document, newest first.
	FindAll(ctx context.Context) ([]D, error)
	FindByID(ctx context.Context, id string) (D, error)
	Add(ctx context.Context, doc D) error
	// Update replaces the stored document that has doc's id.
	Update(ctx context.Context, doc D) error
	// Delete removes the document and returns what was stored.
	Delete(ctx context.Context, id string) (D, error)
}
