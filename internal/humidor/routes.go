// internal/humidor/routes.go
package humidor

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
)

// RegisterRoutes sets up all humidor routes. Every route requires
// authentication; a humidor is visible only to its owner.
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/humidor").Subrouter()
	api.Use(middleware.Authenticate)

	api.HandleFunc("", handler.CreateEntry).Methods(http.MethodPost)
	api.HandleFunc("", handler.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/{entryId}", handler.UpdateEntry).Methods(http.MethodPatch)
	api.HandleFunc("/{entryId}", handler.DeleteEntry).Methods(http.MethodDelete)
	api.HandleFunc("/{entryId}/adjust", handler.AdjustQuantity).Methods(http.MethodPost)
}
