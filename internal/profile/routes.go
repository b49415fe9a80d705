// internal/profile/routes.go
package profile

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
)

// RegisterRoutes sets up all profile and follow routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/users").Subrouter()

	// Authenticated self-service routes must be registered before the
	// {userId} routes so "me" is not parsed as an ID.
	me := api.PathPrefix("/me").Subrouter()
	me.Use(middleware.Authenticate)
	me.HandleFunc("", handler.UpdateProfile).Methods(http.MethodPatch)
	me.HandleFunc("/avatar", handler.UpdateAvatar).Methods(http.MethodPost)

	read := api.NewRoute().Subrouter()
	read.Use(middleware.OptionalAuthenticate)
	read.HandleFunc("/by-username/{username}", handler.GetProfileByUsername).Methods(http.MethodGet)
	read.HandleFunc("/{userId}", handler.GetProfile).Methods(http.MethodGet)
	read.HandleFunc("/{userId}/followers", handler.ListFollowers).Methods(http.MethodGet)
	read.HandleFunc("/{userId}/following", handler.ListFollowing).Methods(http.MethodGet)

	write := api.NewRoute().Subrouter()
	write.Use(middleware.Authenticate)
	write.HandleFunc("/{userId}/follow", handler.Follow).Methods(http.MethodPost)
	write.HandleFunc("/{userId}/follow", handler.Unfollow).Methods(http.MethodDelete)
}
