// internal/reviews/service.go
package reviews

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrReviewNotFound = errors.New("review not found")
	ErrNotOwner       = errors.New("not the owner")
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	// topRatedMinReviews keeps single-review cigars out of the leaderboard
	topRatedMinReviews = 3
	topRatedLimit      = 25
)

// Service provides cigar review operations
type Service struct {
	repo Repository
}

// NewService creates a reviews service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateReview records a review. Cigar names are stored as entered but
// matched case-insensitively when listing and aggregating.
func (s *Service) CreateReview(ctx context.Context, userID int64, req *CreateReviewRequest) (*Review, error) {
	review := &Review{
		UserID:      userID,
		CigarName:   strings.TrimSpace(req.CigarName),
		Brand:       strings.TrimSpace(req.Brand),
		Rating:      req.Rating,
		Body:        strings.TrimSpace(req.Body),
		FlavorNotes: strings.TrimSpace(req.FlavorNotes),
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListByCigar returns the reviews of one cigar plus its rating summary
func (s *Service) ListByCigar(ctx context.Context, cigarName string, page, limit int) ([]Review, *CigarSummary, error) {
	limit, offset := clampPage(page, limit)

	list, err := s.repo.ListByCigar(ctx, cigarName, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.repo.SummarizeCigar(ctx, cigarName)
	if errors.Is(err, ErrReviewNotFound) {
		summary = &CigarSummary{CigarName: cigarName}
	} else if err != nil {
		return nil, nil, err
	}

	return list, summary, nil
}

// ListByUser returns a user's reviews, newest first
func (s *Service) ListByUser(ctx context.Context, userID int64, page, limit int) ([]Review, error) {
	limit, offset := clampPage(page, limit)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// TopRated returns the best-rated cigars with enough reviews to count
func (s *Service) TopRated(ctx context.Context) ([]CigarSummary, error) {
	return s.repo.TopRated(ctx, topRatedMinReviews, topRatedLimit)
}

// DeleteReview removes a review. Only its author may delete it.
func (s *Service) DeleteReview(ctx context.Context, reviewID, userID int64) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, reviewID)
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
