package api

import "github.com/inficom-solutions/portfolio-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler     resourceHandler[*models.Project]
	testimonialHandler resourceHandler[*models.Testimonial]
	serviceHandler     resourceHandler[*models.Service]
	featureHandler     resourceHandler[*models.Feature]
	authHandler        authHandler
	contactHandler     contactHandler
	healthHandler      healthHandler
}

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Message string `json:"message" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"name"`
	Details string `json:"details,omitempty" example:"name must not be blank"`
}

// MessageResponse confirms an operation that returns no record
type MessageResponse struct {
	Message string `json:"message" example:"Project deleted successfully"`
}
