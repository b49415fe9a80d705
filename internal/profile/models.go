// internal/profile/models.go
package profile

import (
	"time"
)

// Profile is a user's public profile with social counts. FollowedByMe is
// computed for the viewer and is always false for anonymous requests.
type Profile struct {
	UserID        int64     `db:"user_id" json:"user_id"`
	Username      string    `db:"username" json:"username"`
	DisplayName   string    `db:"display_name" json:"display_name,omitempty"`
	Bio           string    `db:"bio" json:"bio,omitempty"`
	Location      string    `db:"location" json:"location,omitempty"`
	AvatarURL     string    `db:"avatar_url" json:"avatar_url,omitempty"`
	FavoriteCigar string    `db:"favorite_cigar" json:"favorite_cigar,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	PostsCount     int  `db:"posts_count" json:"posts_count"`
	FollowersCount int  `db:"followers_count" json:"followers_count"`
	FollowingCount int  `db:"following_count" json:"following_count"`
	FollowedByMe   bool `db:"followed_by_me" json:"followed_by_me"`
}

// FollowUser is the compact entry in follower and following lists
type FollowUser struct {
	UserID       int64  `db:"user_id" json:"user_id"`
	Username     string `db:"username" json:"username"`
	DisplayName  string `db:"display_name" json:"display_name,omitempty"`
	AvatarURL    string `db:"avatar_url" json:"avatar_url,omitempty"`
	FollowedByMe bool   `db:"followed_by_me" json:"followed_by_me"`
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name" validate:"omitempty,max=50"`
	Bio           *string `json:"bio" validate:"omitempty,max=500"`
	Location      *string `json:"location" validate:"omitempty,max=100"`
	FavoriteCigar *string `json:"favorite_cigar" validate:"omitempty,max=100"`
}
