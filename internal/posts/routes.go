// internal/posts/routes.go
package posts

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
)

// RegisterRoutes sets up all post routes. Reads take an optional bearer token
// for personalization; writes require authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/posts").Subrouter()

	// Public reads (personalized when a valid token is sent)
	read := api.NewRoute().Subrouter()
	read.Use(middleware.OptionalAuthenticate)
	read.HandleFunc("", handler.GetFeed).Methods(http.MethodGet)
	read.HandleFunc("/{postId}", handler.GetPost).Methods(http.MethodGet)
	read.HandleFunc("/{postId}/comments", handler.GetComments).Methods(http.MethodGet)

	// Authenticated writes
	write := api.NewRoute().Subrouter()
	write.Use(middleware.Authenticate)
	write.HandleFunc("", handler.CreatePost).Methods(http.MethodPost)
	write.HandleFunc("/{postId}", handler.DeletePost).Methods(http.MethodDelete)
	write.HandleFunc("/{postId}/like", handler.ToggleLike).Methods(http.MethodPost)
	write.HandleFunc("/{postId}/comments", handler.AddComment).Methods(http.MethodPost)
	write.HandleFunc("/{postId}/comments/{commentId}", handler.DeleteComment).Methods(http.MethodDelete)
	write.HandleFunc("/{postId}/comments/{commentId}/like", handler.ToggleCommentLike).Methods(http.MethodPost)
}
