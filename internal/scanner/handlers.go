// internal/scanner/handlers.go
package scanner

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
	"github.com/smokering/smokering-backend/internal/common/utils"
)

// Handler handles cigar scan requests
type Handler struct {
	service *Service
}

// NewHandler creates a new scanner handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Identify handles POST /api/v1/scanner/identify (multipart form, "image"
// file plus optional "hint" text used when vision analysis fails)
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.ErrorResponse(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.service.Identify(r.Context(), file, r.FormValue("hint"))
	if err != nil {
		switch {
		case errors.Is(err, ErrScannerUnavailable):
			utils.ErrorResponse(w, "Cigar scanner is not available", http.StatusServiceUnavailable)
		case errors.Is(err, ErrNotACigar):
			utils.ErrorResponse(w, "Image does not appear to show a cigar", http.StatusUnprocessableEntity)
		default:
			utils.ErrorResponse(w, "Scan failed", http.StatusBadGateway)
		}
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// RegisterRoutes sets up the scanner routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/scanner").Subrouter()
	api.Use(middleware.Authenticate)
	api.HandleFunc("/identify", handler.Identify).Methods(http.MethodPost)
}
