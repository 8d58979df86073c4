package database

import (
	"context"

	"github.com/inficom-solutions/portfolio-backend/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type Database struct {
	projectRepo     Store[*models.Project]
	testimonialRepo Store[*models.Testimonial]
	serviceRepo     Store[*models.Service]
	featureRepo     Store[*models.Feature]
	close           func(ctx context.Context) error
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo:     NewGormStore(db, models.ProjectSchema),
		testimonialRepo: NewGormStore(db, models.TestimonialSchema),
		serviceRepo:     NewGormStore(db, models.ServiceSchema),
		featureRepo:     NewGormStore(db, models.FeatureSchema),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMongo initializes the repositories over collections of one MongoDB database
func NewMongo(db *mongo.Database) Database {
	return Database{
		projectRepo:     NewMongoStore(db, models.ProjectSchema),
		testimonialRepo: NewMongoStore(db, models.TestimonialSchema),
		serviceRepo:     NewMongoStore(db, models.ServiceSchema),
		featureRepo:     NewMongoStore(db, models.FeatureSchema),
		close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() Store[*models.Project] {
	return d.projectRepo
}

func (d Database) TestimonialRepo() Store[*models.Testimonial] {
	return d.testimonialRepo
}

func (d Database) ServiceRepo() Store[*models.Service] {
	return d.serviceRepo
}

func (d Database) FeatureRepo() Store[*models.Feature] {
	return d.featureRepo
}

// Close releases the underlying connection pool.
func (d Database) Close(ctx context.Context) error {
	if d.close == nil {
		return nil
	}
	return d.close(ctx)
}

// EnsureIndexes creates the MongoDB indexes every collection needs. It is a
// no-op for relational stores, whose indexes come from migrations.
func (d Database) EnsureIndexes(ctx context.Context) error {
	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for _, s := range []any{d.projectRepo, d.testimonialRepo, d.serviceRepo, d.featureRepo} {
		if ix, ok := s.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
