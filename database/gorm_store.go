package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/inficom-solutions/portfolio-backend/models"
	"gorm.io/gorm"
)

// GormStore keeps documents in a relational table through GORM.
type GormStore[D models.Document] struct {
	db     *gorm.DB
	name   string
	newDoc func() D
}

func NewGormStore[D models.Document](db *gorm.DB, schema models.Schema[D]) *GormStore[D] {
	return &GormStore[D]{db: db, name: schema.Name, newDoc: schema.New}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *GormStore[D]) GetDB() *gorm.DB {
	return r.db
}

// FindAll returns all documents ordered by creation time, newest first
func (r *GormStore[D]) FindAll(ctx context.Context) ([]D, error) {
	docs := []D{}
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&docs).Error
	return docs, err
}

// FindByID returns a document by its ID
func (r *GormStore[D]) FindByID(ctx context.Context, id string) (D, error) {
	doc := r.newDoc()
	err := r.db.WithContext(ctx).First(doc, "id = ?", id).Error
	if err != nil {
		var zero D
		return zero, r.wrap(id, err)
	}
	return doc, nil
}

// Add inserts a new document into the database
func (r *GormStore[D]) Add(ctx context.Context, doc D) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// Update writes every column of doc, including zero values
func (r *GormStore[D]) Update(ctx context.Context, doc D) error {
	res := r.db.WithContext(ctx).Model(doc).Select("*").Updates(doc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", r.name, doc.GetID(), errs.ErrNotFound)
	}
	return nil
}

// Delete removes a document by id and returns the removed row
func (r *GormStore[D]) Delete(ctx context.Context, id string) (D, error) {
	doc := r.newDoc()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(doc, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(doc).Error
	})
	if err != nil {
		var zero D
		return zero, r.wrap(id, err)
	}
	return doc, nil
}

func (r *GormStore[D]) wrap(id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", r.name, id, errs.ErrNotFound)
	}
	return err
}
