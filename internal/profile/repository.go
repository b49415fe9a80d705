// internal/profile/repository.go
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines profile and follow graph operations
type Repository interface {
	GetByUserID(ctx context.Context, userID, viewerID int64) (*Profile, error)
	GetByUsername(ctx context.Context, username string, viewerID int64) (*Profile, error)
	Update(ctx context.Context, userID int64, req *UpdateProfileRequest) error
	SetAvatar(ctx context.Context, userID int64, avatarURL string) error

	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListFollowers(ctx context.Context, userID, viewerID int64, limit, offset int) ([]FollowUser, error)
	ListFollowing(ctx context.Context, userID, viewerID int64, limit, offset int) ([]FollowUser, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

type sqlxRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

const profileSelect = `
	SELECT
		u.id AS user_id,
		u.username,
		COALESCE(p.display_name, '') AS display_name,
		COALESCE(p.bio, '') AS bio,
		COALESCE(p.location, '') AS location,
		COALESCE(p.avatar_url, '') AS avatar_url,
		COALESCE(p.favorite_cigar, '') AS favorite_cigar,
		u.created_at,
		(SELECT COUNT(*) FROM posts WHERE user_id = u.id) AS posts_count,
		(SELECT COUNT(*) FROM follows WHERE followee_id = u.id) AS followers_count,
		(SELECT COUNT(*) FROM follows WHERE follower_id = u.id) AS following_count,
		EXISTS(SELECT 1 FROM follows WHERE follower_id = $2 AND followee_id = u.id) AS followed_by_me
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.id`

func (r *sqlxRepository) GetByUserID(ctx context.Context, userID, viewerID int64) (*Profile, error) {
	var profile Profile
	err := r.db.GetContext(ctx, &profile, profileSelect+` WHERE u.id = $1`, userID, viewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *sqlxRepository) GetByUsername(ctx context.Context, username string, viewerID int64) (*Profile, error) {
	var profile Profile
	err := r.db.GetContext(ctx, &profile, profileSelect+` WHERE LOWER(u.username) = LOWER($1)`, username, viewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *sqlxRepository) Update(ctx context.Context, userID int64, req *UpdateProfileRequest) error {
	// Upsert so a fresh account gets its profile row on first edit. Nil
	// fields keep their stored values.
	query := `
		INSERT INTO profiles (user_id, display_name, bio, location, favorite_cigar, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = COALESCE($2, profiles.display_name),
			bio = COALESCE($3, profiles.bio),
			location = COALESCE($4, profiles.location),
			favorite_cigar = COALESCE($5, profiles.favorite_cigar),
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, userID, req.DisplayName, req.Bio, req.Location, req.FavoriteCigar)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *sqlxRepository) SetAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `
		INSERT INTO profiles (user_id, avatar_url, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET avatar_url = $2, updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, userID, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	return nil
}

func (r *sqlxRepository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *sqlxRepository) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

const followUserSelect = `
	SELECT
		u.id AS user_id,
		u.username,
		COALESCE(p.display_name, '') AS display_name,
		COALESCE(p.avatar_url, '') AS avatar_url,
		EXISTS(SELECT 1 FROM follows WHERE follower_id = $2 AND followee_id = u.id) AS followed_by_me
	FROM follows f
	JOIN users u ON u.id = %s
	LEFT JOIN profiles p ON p.user_id = u.id
	WHERE f.%s = $1
	ORDER BY f.created_at DESC
	LIMIT $3 OFFSET $4`

func (r *sqlxRepository) ListFollowers(ctx context.Context, userID, viewerID int64, limit, offset int) ([]FollowUser, error) {
	query := fmt.Sprintf(followUserSelect, "f.follower_id", "followee_id")

	users := []FollowUser{}
	if err := r.db.SelectContext(ctx, &users, query, userID, viewerID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

func (r *sqlxRepository) ListFollowing(ctx context.Context, userID, viewerID int64, limit, offset int) ([]FollowUser, error) {
	query := fmt.Sprintf(followUserSelect, "f.followee_id", "follower_id")

	users := []FollowUser{}
	if err := r.db.SelectContext(ctx, &users, query, userID, viewerID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return users, nil
}

func (r *sqlxRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT follower_id FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}
	return ids, nil
}

func (r *sqlxRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}
