// internal/posts/models.go
package posts

import (
	"time"
)

// Feed modes accepted by the filter query parameter.
const (
	FeedModeAll       = "all"
	FeedModeFollowing = "following"
)

// Post is an image post annotated with engagement data for the viewer
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields
	User          *UserInfo `json:"user,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
}

// UserInfo is the author summary embedded in posts and comments
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Comment carries one level of threading via ParentID; children are grouped
// under parents by the client, not the server.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	ParentID  *int64    `json:"parent_comment_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	User       *UserInfo `json:"user,omitempty"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
}

type CreatePostRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption" validate:"max=2200"`
}

type CommentRequest struct {
	Text     string `json:"text" validate:"required,max=1000"`
	ParentID *int64 `json:"parent_comment_id,omitempty"`
}

type PaginationMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

type CommentsResponse struct {
	Comments   []Comment      `json:"comments"`
	Pagination PaginationMeta `json:"pagination"`
}
