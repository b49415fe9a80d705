// internal/reviews/models.go
package reviews

import (
	"time"
)

// Review is a structured cigar review with a 1-5 rating, optional flavor
// notes and an optional photo.
type Review struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Username    string    `db:"username" json:"username,omitempty"`
	CigarName   string    `db:"cigar_name" json:"cigar_name"`
	Brand       string    `db:"brand" json:"brand,omitempty"`
	Rating      int       `db:"rating" json:"rating"`
	Body        string    `db:"body" json:"body,omitempty"`
	FlavorNotes string    `db:"flavor_notes" json:"flavor_notes,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CigarSummary aggregates the reviews of one cigar
type CigarSummary struct {
	CigarName     string  `db:"cigar_name" json:"cigar_name"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewsCount  int     `db:"reviews_count" json:"reviews_count"`
}

type CreateReviewRequest struct {
	CigarName   string `json:"cigar_name" validate:"required,max=150"`
	Brand       string `json:"brand" validate:"max=100"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Body        string `json:"body" validate:"max=5000"`
	FlavorNotes string `json:"flavor_notes" validate:"max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=2048"`
}
