package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gigbook/internal/delivery/http/controllers"
)

// Middleware wraps a handler func, typically with authentication.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewRouter initializes the HTTP router with all application routes
func NewRouter(events *controllers.EventController, participations *controllers.ParticipationController, auth Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events", auth(events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(events.DeleteEvent))

	// Blocks
	mux.HandleFunc("POST /blocks", auth(events.BlockRange))
	mux.HandleFunc("DELETE /blocks/{eventID}", auth(events.Unblock))

	// Participations
	mux.HandleFunc("POST /events/{eventID}/accept", auth(participations.Accept))
	mux.HandleFunc("POST /events/{eventID}/reject", auth(participations.Reject))
	mux.HandleFunc("POST /events/{eventID}/join", auth(participations.RequestToJoin))

	// Conflicts
	mux.HandleFunc("GET /conflicts", auth(events.FindConflicts))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
