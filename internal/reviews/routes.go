// internal/reviews/routes.go
package reviews

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
)

// RegisterRoutes sets up all review routes. Reads are public; writes require
// authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/reviews").Subrouter()

	api.HandleFunc("", handler.ListByCigar).Methods(http.MethodGet)
	api.HandleFunc("/top", handler.TopRated).Methods(http.MethodGet)
	api.HandleFunc("/user/{userId}", handler.ListByUser).Methods(http.MethodGet)

	write := api.NewRoute().Subrouter()
	write.Use(middleware.Authenticate)
	write.HandleFunc("", handler.CreateReview).Methods(http.MethodPost)
	write.HandleFunc("/{reviewId}", handler.DeleteReview).Methods(http.MethodDelete)
}
