// internal/humidor/handlers.go
package humidor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
	"github.com/smokering/smokering-backend/internal/common/utils"
)

// Handler handles humidor inventory requests
type Handler struct {
	service *Service
}

// NewHandler creates a new humidor handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateEntry handles POST /api/v1/humidor
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, entry, http.StatusCreated)
}

// ListEntries handles GET /api/v1/humidor?page=<n>&limit=<n>
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.ListEntries(r.Context(), userID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"entries": entries}, http.StatusOK)
}

// UpdateEntry handles PATCH /api/v1/humidor/{entryId}
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), entryID, userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, entry, http.StatusOK)
}

// AdjustQuantity handles POST /api/v1/humidor/{entryId}/adjust
func (h *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req AdjustQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Delta == 0 {
		utils.ErrorResponse(w, "Delta cannot be zero", http.StatusBadRequest)
		return
	}

	quantity, err := h.service.AdjustQuantity(r.Context(), entryID, userID, req.Delta)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]int{"quantity": quantity}, http.StatusOK)
}

// DeleteEntry handles DELETE /api/v1/humidor/{entryId}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), entryID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Entry deleted", http.StatusOK)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["entryId"], 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(w, "Invalid entryId", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		utils.ErrorResponse(w, "Humidor entry not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		utils.ErrorResponse(w, "You do not have permission to do that", http.StatusForbidden)
	default:
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
