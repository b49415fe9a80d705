// internal/posts/handlers.go
package posts

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

// Handler handles feed, post, like and comment requests
type Handler struct {
	service  *Service
	uploader *storage.Uploader
}

// NewHandler creates a new posts handler. uploader may be nil, in which case
// posts can only be created from an already-hosted image URL.
func NewHandler(service *Service, uploader *storage.Uploader) *Handler {
	return &Handler{service: service, uploader: uploader}
}

// GetFeed handles GET /api/v1/posts?filter=all|following
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.GetUserIDFromContext(r.Context())

	mode := r.URL.Query().Get("filter")
	if mode != "" && mode != FeedModeAll && mode != FeedModeFollowing {
		utils.ErrorResponse(w, "Invalid filter, must be 'all' or 'following'", http.StatusBadRequest)
		return
	}

	feed, err := h.service.Feed(r.Context(), viewerID, mode)
	if err != nil {
		utils.ErrorResponse(w, "Failed to load feed", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{"posts": feed}, http.StatusOK)
}

// GetPost handles GET /api/v1/posts/{postId}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserIDFromContext(r.Context())

	post, err := h.service.GetPost(r.Context(), postID, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, post, http.StatusOK)
}

// CreatePost handles POST /api/v1/posts. The body is either JSON carrying an
// image_url, or multipart form data with an "image" file and optional
// "caption" field.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePostRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if h.uploader == nil {
			utils.ErrorResponse(w, "Image uploads are not enabled", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			utils.ErrorResponse(w, "Missing image file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		imageURL, err := h.uploader.Upload(file, header, "posts")
		if err != nil {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}

		req.ImageURL = imageURL
		req.Caption = r.FormValue("caption")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, &req)
	if err != nil {
		utils.ErrorResponse(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, post, http.StatusCreated)
}

// DeletePost handles DELETE /api/v1/posts/{postId}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), postID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Post deleted", http.StatusOK)
}

// ToggleLike handles POST /api/v1/posts/{postId}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}

	liked, err := h.service.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]bool{"liked": liked}, http.StatusOK)
}

// GetComments handles GET /api/v1/posts/{postId}/comments?page=&limit=
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserIDFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.service.GetComments(r.Context(), postID, viewerID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

// AddComment handles POST /api/v1/posts/{postId}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), postID, userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, comment, http.StatusCreated)
}

// DeleteComment handles DELETE /api/v1/posts/{postId}/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}
	commentID, ok := h.pathID(w, r, "commentId")
	if !ok {
		return
	}

	if err := h.service.DeleteComment(r.Context(), postID, commentID, userID); err != nil {
		h.writeError(w, err)
		return
	}

	utils.MessageResponse(w, "Comment deleted", http.StatusOK)
}

// ToggleCommentLike handles POST /api/v1/posts/{postId}/comments/{commentId}/like
func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, ok := h.pathID(w, r, "postId")
	if !ok {
		return
	}
	commentID, ok := h.pathID(w, r, "commentId")
	if !ok {
		return
	}

	liked, err := h.service.ToggleCommentLike(r.Context(), postID, commentID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]bool{"liked": liked}, http.StatusOK)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		utils.ErrorResponse(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, ErrCommentNotFound):
		utils.ErrorResponse(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		utils.ErrorResponse(w, "You do not have permission to do that", http.StatusForbidden)
	case errors.Is(err, ErrParentMismatch):
		utils.ErrorResponse(w, "Parent comment belongs to a different post", http.StatusBadRequest)
	case errors.Is(err, ErrEmptyComment):
		utils.ErrorResponse(w, "Comment text cannot be empty", http.StatusBadRequest)
	default:
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
