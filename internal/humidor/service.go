// internal/humidor/service.go
package humidor

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrEntryNotFound = errors.New("humidor entry not found")
	ErrNotOwner      = errors.New("not the owner")
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service provides humidor inventory operations. The humidor is private:
// every operation is scoped to its owner.
type Service struct {
	repo Repository
}

// NewService creates a humidor service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateEntry adds a cigar line to the caller's humidor
func (s *Service) CreateEntry(ctx context.Context, userID int64, req *CreateEntryRequest) (*Entry, error) {
	entry := &Entry{
		UserID:        userID,
		CigarName:     req.CigarName,
		Brand:         req.Brand,
		Vitola:        req.Vitola,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  req.PurchaseDate,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns one page of the caller's humidor, newest first
func (s *Service) ListEntries(ctx context.Context, userID int64, page, limit int) ([]Entry, error) {
	limit, offset := clampPage(page, limit)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateEntry applies the non-nil fields of req to an owned entry
func (s *Service) UpdateEntry(ctx context.Context, entryID, userID int64, req *UpdateEntryRequest) (*Entry, error) {
	if err := s.authorize(ctx, entryID, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, entryID, req); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, entryID)
}

// AdjustQuantity changes an owned entry's count by a signed delta and
// returns the new quantity, clamped at zero.
func (s *Service) AdjustQuantity(ctx context.Context, entryID, userID int64, delta int) (int, error) {
	if err := s.authorize(ctx, entryID, userID); err != nil {
		return 0, err
	}
	return s.repo.AdjustQuantity(ctx, entryID, delta)
}

// DeleteEntry removes an owned entry
func (s *Service) DeleteEntry(ctx context.Context, entryID, userID int64) error {
	if err := s.authorize(ctx, entryID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, entryID)
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

func (s *Service) authorize(ctx context.Context, entryID, userID int64) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return ErrNotOwner
	}
	return nil
}
