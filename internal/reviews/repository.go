// internal/reviews/repository.go
package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines review storage operations
type Repository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, reviewID int64) (*Review, error)
	ListByCigar(ctx context.Context, cigarName string, limit, offset int) ([]Review, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Review, error)
	SummarizeCigar(ctx context.Context, cigarName string) (*CigarSummary, error)
	TopRated(ctx context.Context, minReviews, limit int) ([]CigarSummary, error)
	ListCigarNames(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, reviewID int64) error
}

type sqlxRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new reviews repository
func NewRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.user_id, u.username, r.cigar_name, r.brand, r.rating, r.body,
		r.flavor_notes, r.image_url, r.created_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

func (r *sqlxRepository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (user_id, cigar_name, brand, rating, body, flavor_notes, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		review.UserID, review.CigarName, review.Brand, review.Rating, review.Body,
		review.FlavorNotes, review.ImageURL,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *sqlxRepository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	var review Review
	err := r.db.GetContext(ctx, &review, reviewSelect+` WHERE r.id = $1`, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *sqlxRepository) ListByCigar(ctx context.Context, cigarName string, limit, offset int) ([]Review, error) {
	reviews := []Review{}
	err := r.db.SelectContext(ctx, &reviews,
		reviewSelect+` WHERE LOWER(r.cigar_name) = LOWER($1) ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`,
		cigarName, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *sqlxRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Review, error) {
	reviews := []Review{}
	err := r.db.SelectContext(ctx, &reviews,
		reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *sqlxRepository) SummarizeCigar(ctx context.Context, cigarName string) (*CigarSummary, error) {
	var summary CigarSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT
			MIN(cigar_name) AS cigar_name,
			ROUND(AVG(rating)::numeric, 2) AS average_rating,
			COUNT(*) AS reviews_count
		FROM reviews
		WHERE LOWER(cigar_name) = LOWER($1)
		HAVING COUNT(*) > 0`,
		cigarName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to summarize cigar: %w", err)
	}
	return &summary, nil
}

func (r *sqlxRepository) TopRated(ctx context.Context, minReviews, limit int) ([]CigarSummary, error) {
	summaries := []CigarSummary{}
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT
			MIN(cigar_name) AS cigar_name,
			ROUND(AVG(rating)::numeric, 2) AS average_rating,
			COUNT(*) AS reviews_count
		FROM reviews
		GROUP BY LOWER(cigar_name)
		HAVING COUNT(*) >= $1
		ORDER BY AVG(rating) DESC, COUNT(*) DESC
		LIMIT $2`,
		minReviews, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top rated cigars: %w", err)
	}
	return summaries, nil
}

func (r *sqlxRepository) ListCigarNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.SelectContext(ctx, &names,
		`SELECT DISTINCT cigar_name FROM reviews ORDER BY cigar_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cigar names: %w", err)
	}
	return names, nil
}

func (r *sqlxRepository) Delete(ctx context.Context, reviewID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}
	return nil
}
