// internal/venues/handlers.go
package venues

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smokering/smokering-backend/internal/common/utils"
)

// Handler handles venue search requests
type Handler struct {
	service *Service
}

// NewHandler creates a new venues handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Router returns the venues sub-router, mounted by the main router under
// /api/v1/venues.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/search", h.Search)
	return r
}

// Search handles GET /api/v1/venues/search?q=<query>&city=<city>&lat=&lng=&category=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &SearchRequest{
		Query:    q.Get("q"),
		City:     q.Get("city"),
		Category: q.Get("category"),
	}

	var err error
	if req.Lat, err = parseCoord(q.Get("lat")); err != nil {
		utils.ErrorResponse(w, "Invalid lat query parameter", http.StatusBadRequest)
		return
	}
	if req.Lng, err = parseCoord(q.Get("lng")); err != nil {
		utils.ErrorResponse(w, "Invalid lng query parameter", http.StatusBadRequest)
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		utils.ErrorResponse(w, "lat and lng must be provided together", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, "Missing or invalid search parameters", http.StatusBadRequest)
		return
	}

	venues, err := h.service.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrSearchUnavailable) {
			utils.ErrorResponse(w, "Venue search is not available", http.StatusServiceUnavailable)
			return
		}
		utils.ErrorResponse(w, "Venue search failed", http.StatusBadGateway)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"venues": venues}, http.StatusOK)
}

func parseCoord(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &val, nil
}
