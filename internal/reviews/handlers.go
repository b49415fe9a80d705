// internal/reviews/handlers.go
package reviews

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/smokering/smokering-backend/internal/auth"
	"github.com/smokering/smokering-backend/internal/common/storage"
	"github.com/smokering/smokering-backend/internal/common/utils"
)

// Handler handles cigar review requests
type Handler struct {
	service  *Service
	uploader *storage.Uploader
}

// NewHandler creates a new reviews handler. uploader may be nil, in which
// case review photos can only be attached by URL.
func NewHandler(service *Service, uploader *storage.Uploader) *Handler {
	return &Handler{service: service, uploader: uploader}
}

// CreateReview handles POST /api/v1/reviews. The body is either JSON, or
// multipart form data with an optional "image" file alongside the review
// fields.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateReviewRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.decodeMultipart(w, r, &req) {
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	review, err := h.service.CreateReview(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, review, http.StatusCreated)
}

// ListByCigar handles GET /api/v1/reviews?cigar=<name>
func (h *Handler) ListByCigar(w http.ResponseWriter, r *http.Request) {
	cigarName := r.URL.Query().Get("cigar")
	if cigarName == "" {
		utils.ErrorResponse(w, "Missing cigar query parameter", http.StatusBadRequest)
		return
	}
	page, limit := h.pagination(r)

	list, summary, err := h.service.ListByCigar(r.Context(), cigarName, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"summary": summary,
		"reviews": list,
	}, http.StatusOK)
}

// ListByUser handles GET /api/v1/reviews/user/{userId}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || userID <= 0 {
		utils.ErrorResponse(w, "Invalid userId", http.StatusBadRequest)
		return
	}
	page, limit := h.pagination(r)

	list, err := h.service.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"reviews": list}, http.StatusOK)
}

// TopRated handles GET /api/v1/reviews/top
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.TopRated(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"cigars": summaries}, http.StatusOK)
}

// DeleteReview handles DELETE /api/v1/reviews/{reviewId}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reviewID, err := strconv.ParseInt(mux.Vars(r)["reviewId"], 10, 64)
	if err != nil || reviewID <= 0 {
		utils.ErrorResponse(w, "Invalid reviewId", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteReview(r.Context(), reviewID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Review deleted", http.StatusOK)
}

func (h *Handler) decodeMultipart(w http.ResponseWriter, r *http.Request, req *CreateReviewRequest) bool {
	req.CigarName = r.FormValue("cigar_name")
	req.Brand = r.FormValue("brand")
	req.Body = r.FormValue("body")
	req.FlavorNotes = r.FormValue("flavor_notes")
	req.Rating, _ = strconv.Atoi(r.FormValue("rating"))

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return true
	}
	if err != nil {
		utils.ErrorResponse(w, "Invalid image file", http.StatusBadRequest)
		return false
	}
	defer file.Close()

	if h.uploader == nil {
		utils.ErrorResponse(w, "Image uploads are not enabled", http.StatusBadRequest)
		return false
	}

	imageURL, err := h.uploader.Upload(file, header, "reviews")
	if err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return false
	}
	req.ImageURL = imageURL
	return true
}

func (h *Handler) pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		utils.ErrorResponse(w, "Review not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		utils.ErrorResponse(w, "You do not have permission to do that", http.StatusForbidden)
	default:
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
