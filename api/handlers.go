package api

import (
	"time"

	"github.com/inficom-solutions/portfolio-backend/database"
	"github.com/inficom-solutions/portfolio-backend/models"
	"github.com/inficom-solutions/portfolio-backend/services"
)

// App holds the collaborators the HTTP layer is built from.
type App struct {
	Database database.Database
	Media    services.MediaLifecycle
	Auth     *services.Authenticator
	Contact  *services.ContactRelay
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(app App, startupTime time.Time) *routeHandlers {
	db := app.Database
	return &routeHandlers{
		projectHandler:     newResourceHandler(services.NewContent(models.ProjectSchema, db.ProjectRepo(), app.Media)),
		testimonialHandler: newResourceHandler(services.NewContent(models.TestimonialSchema, db.TestimonialRepo(), app.Media)),
		serviceHandler:     newResourceHandler(services.NewContent(models.ServiceSchema, db.ServiceRepo(), app.Media)),
		featureHandler:     newResourceHandler(services.NewContent(models.FeatureSchema, db.FeatureRepo(), app.Media)),
		authHandler:        newAuthHandler(app.Auth),
		contactHandler:     newContactHandler(app.Contact),
		healthHandler:      newHealthHandler(startupTime),
	}
}
