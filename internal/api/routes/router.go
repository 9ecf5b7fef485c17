package routes

import (
	"net/http"

	"github.com/riversideu/studentrisk/backend/internal/api/handlers"
	"github.com/riversideu/studentrisk/backend/internal/api/middleware"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	studentHandler        *handlers.StudentHandler
	interventionHandler   *handlers.InterventionHandler
	recommendationHandler *handlers.RecommendationHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	studentHandler *handlers.StudentHandler,
	interventionHandler *handlers.InterventionHandler,
	recommendationHandler *handlers.RecommendationHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		studentHandler:        studentHandler,
		interventionHandler:   interventionHandler,
		recommendationHandler: recommendationHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint, served outside the auth boundary
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	api := http.NewServeMux()

	// Student roster endpoints
	api.HandleFunc("GET /api/students", r.studentHandler.ListStudents)
	api.HandleFunc("GET /api/students/summary", r.studentHandler.GetSummary)
	api.HandleFunc("GET /api/students/{id}", r.studentHandler.GetStudent)

	// Recommendation endpoints
	api.HandleFunc("POST /api/students/{id}/recommendations", r.recommendationHandler.GenerateRecommendations)
	api.HandleFunc("GET /api/students/{id}/recommendations/stream", r.recommendationHandler.StreamRecommendations)
	api.HandleFunc("POST /api/recommendations/details", r.recommendationHandler.GenerateDetails)
	api.HandleFunc("POST /api/recommendations/prefill", r.recommendationHandler.PrefillForm)

	// Intervention endpoints
	api.HandleFunc("POST /api/interventions", r.interventionHandler.SubmitIntervention)
	api.HandleFunc("GET /api/interventions/pending", r.interventionHandler.ListPending)
	api.HandleFunc("POST /api/interventions/complete", r.interventionHandler.CompleteIntervention)

	// Everything under /api requires a forwarded identity.
	r.mux.Handle("/api/", middleware.AuthMiddleware(api))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflights never hit the auth boundary
	handler = middleware.CORSMiddleware(handler)

	return handler
}
