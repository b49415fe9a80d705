// internal/profile/handlers.go
package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
	"github.com/smokering/smokering-backend/internal/common/utils"
)

// Handler handles profile and follow requests
type Handler struct {
	service *Service
}

// NewHandler creates a new profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetProfile handles GET /api/v1/users/{userId}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserIDFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// GetProfileByUsername handles GET /api/v1/users/by-username/{username}
func (h *Handler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	viewerID, _ := auth.GetUserIDFromContext(r.Context())

	profile, err := h.service.GetProfileByUsername(r.Context(), username, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// UpdateProfile handles PATCH /api/v1/users/me
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// UpdateAvatar handles POST /api/v1/users/me/avatar (multipart form, "avatar" file)
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.ErrorResponse(w, "Missing avatar file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	avatarURL, err := h.service.UpdateAvatar(r.Context(), userID, file, header)
	if err != nil {
		if errors.Is(err, ErrUploadsDisabled) {
			utils.ErrorResponse(w, "Avatar uploads are not enabled", http.StatusBadRequest)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, map[string]string{"avatar_url": avatarURL}, http.StatusOK)
}

// Follow handles POST /api/v1/users/{userId}/follow
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	followeeID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.Follow(r.Context(), followerID, followeeID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Following", http.StatusOK)
}

// Unfollow handles DELETE /api/v1/users/{userId}/follow
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	followeeID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.Unfollow(r.Context(), followerID, followeeID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Unfollowed", http.StatusOK)
}

// ListFollowers handles GET /api/v1/users/{userId}/followers
func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserIDFromContext(r.Context())
	page, limit := h.pagination(r)

	users, err := h.service.ListFollowers(r.Context(), userID, viewerID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"users": users}, http.StatusOK)
}

// ListFollowing handles GET /api/v1/users/{userId}/following
func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserIDFromContext(r.Context())
	page, limit := h.pagination(r)

	users, err := h.service.ListFollowing(r.Context(), userID, viewerID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"users": users}, http.StatusOK)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
	case errors.Is(err, ErrSelfFollow):
		utils.ErrorResponse(w, "You cannot follow yourself", http.StatusBadRequest)
	default:
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
