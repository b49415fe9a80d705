package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	review.ID = 1
	review.CreatedAt = time.Now()
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	args := m.Called(ctx, reviewID)
	if r := args.Get(0); r != nil {
		return r.(*Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListByCigar(ctx context.Context, cigarName string, limit, offset int) ([]Review, error) {
	args := m.Called(ctx, cigarName, limit, offset)
	return args.Get(0).([]Review), args.Error(1)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Review, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]Review), args.Error(1)
}

func (m *mockRepository) SummarizeCigar(ctx context.Context, cigarName string) (*CigarSummary, error) {
	args := m.Called(ctx, cigarName)
	if s := args.Get(0); s != nil {
		return s.(*CigarSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) TopRated(ctx context.Context, minReviews, limit int) ([]CigarSummary, error) {
	args := m.Called(ctx, minReviews, limit)
	return args.Get(0).([]CigarSummary), args.Error(1)
}

func (m *mockRepository) ListCigarNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, reviewID int64) error {
	return m.Called(ctx, reviewID).Error(0)
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("persists flavor notes and photo with the review", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*reviews.Review")).Return(nil)
		service := NewService(repo)

		review, err := service.CreateReview(ctx, 7, &CreateReviewRequest{
			CigarName:   "Padron 1964 Anniversary",
			Brand:       "Padron",
			Rating:      5,
			Body:        "Box-pressed perfection.",
			FlavorNotes: "  cocoa, espresso, cedar  ",
			ImageURL:    "https://cdn.example.com/reviews/band.jpg",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), review.UserID)
		assert.Equal(t, "cocoa, espresso, cedar", review.FlavorNotes)
		assert.Equal(t, "https://cdn.example.com/reviews/band.jpg", review.ImageURL)
		repo.AssertExpectations(t)
	})

	t.Run("trims whitespace from text fields", func(t *testing.T) {
		repo := new(mockRepository)
		var saved *Review
		repo.On("Create", ctx, mock.AnythingOfType("*reviews.Review")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*Review) }).
			Return(nil)
		service := NewService(repo)

		_, err := service.CreateReview(ctx, 7, &CreateReviewRequest{
			CigarName: "  Cohiba Behike ",
			Rating:    4,
			Body:      " smooth draw ",
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Cohiba Behike", saved.CigarName)
		assert.Equal(t, "smooth draw", saved.Body)
		assert.Empty(t, saved.FlavorNotes)
		assert.Empty(t, saved.ImageURL)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("only the author may delete", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetByID", ctx, int64(3)).Return(&Review{ID: 3, UserID: 7}, nil)
		service := NewService(repo)

		err := service.DeleteReview(ctx, 3, 8)

		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "Delete", ctx, int64(3))
	})

	t.Run("deletes the author's own review", func(t *testing.T) {
		repo := new(mockRepository)
		repo.On("GetByID", ctx, int64(3)).Return(&Review{ID: 3, UserID: 7}, nil)
		repo.On("Delete", ctx, int64(3)).Return(nil)
		service := NewService(repo)

		require.NoError(t, service.DeleteReview(ctx, 3, 7))
		repo.AssertExpectations(t)
	})
}
