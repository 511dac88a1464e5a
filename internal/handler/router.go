package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"watercare/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
// Notifications is optional and only mounted when the dispatch log is configured.
type Handlers struct {
	Health        *HealthHandler
	Customers     *CustomerHandler
	Entries       *EntryHandler
	Notifications *NotificationHandler
}

// NewRouter builds the API router with recovery and request logging
func NewRouter(h Handlers, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log))

	router.HandleFunc("/health", h.Health.HandleHealth).Methods(http.MethodGet)

	router.HandleFunc("/customers", h.Customers.List).Methods(http.MethodGet)
	router.HandleFunc("/customers/{id}", h.Customers.Get).Methods(http.MethodGet)
	router.HandleFunc("/customers/{id}/services", h.Customers.AddService).Methods(http.MethodPost)
	router.HandleFunc("/refresh", h.Customers.Refresh).Methods(http.MethodPost)

	router.HandleFunc("/entries", h.Entries.Create).Methods(http.MethodPost)

	if h.Notifications != nil {
		router.HandleFunc("/customers/{id}/notifications", h.Notifications.List).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return router
}
