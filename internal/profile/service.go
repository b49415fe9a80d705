// internal/profile/service.go
package profile

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/smokering/smokering-backend/internal/common/storage"
)

// Common errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrUploadsDisabled = errors.New("uploads are not enabled")
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service provides profile and follow graph operations
type Service struct {
	repo     Repository
	uploader *storage.Uploader
}

// NewService creates a profile service. uploader may be nil.
func NewService(repo Repository, uploader *storage.Uploader) *Service {
	return &Service{repo: repo, uploader: uploader}
}

// GetProfile returns a profile by user ID, personalized for the viewer
func (s *Service) GetProfile(ctx context.Context, userID, viewerID int64) (*Profile, error) {
	return s.repo.GetByUserID(ctx, userID, viewerID)
}

// GetProfileByUsername returns a profile by username, case-insensitively
func (s *Service) GetProfileByUsername(ctx context.Context, username string, viewerID int64) (*Profile, error) {
	return s.repo.GetByUsername(ctx, username, viewerID)
}

// UpdateProfile applies the non-nil fields of req to the caller's profile
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	if err := s.repo.Update(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID, userID)
}

// UpdateAvatar uploads a new avatar image and stores its URL
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}

	avatarURL, err := s.uploader.Upload(file, header, "avatars")
	if err != nil {
		return "", err
	}

	if err := s.repo.SetAvatar(ctx, userID, avatarURL); err != nil {
		return "", err
	}
	return avatarURL, nil
}

// Follow makes followerID follow followeeID. Following an already-followed
// user is a no-op, not an error.
func (s *Service) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	exists, err := s.repo.UserExists(ctx, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProfileNotFound
	}

	_, err = s.repo.Follow(ctx, followerID, followeeID)
	return err
}

// Unfollow removes a follow edge. Unfollowing a user who was never followed
// is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	exists, err := s.repo.UserExists(ctx, followeeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProfileNotFound
	}

	_, err = s.repo.Unfollow(ctx, followerID, followeeID)
	return err
}

// ListFollowers returns the users following userID, newest first
func (s *Service) ListFollowers(ctx context.Context, userID, viewerID int64, page, limit int) ([]FollowUser, error) {
	limit, offset := clampPage(page, limit)
	return s.repo.ListFollowers(ctx, userID, viewerID, limit, offset)
}

// ListFollowing returns the users userID follows, newest first
func (s *Service) ListFollowing(ctx context.Context, userID, viewerID int64, page, limit int) ([]FollowUser, error) {
	limit, offset := clampPage(page, limit)
	return s.repo.ListFollowing(ctx, userID, viewerID, limit, offset)
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, (page - 1) * limit
}
