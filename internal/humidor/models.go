// internal/humidor/models.go
package humidor

import (
	"time"
)

// Entry is one cigar line in a user's humidor inventory
type Entry struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	CigarName     string     `db:"cigar_name" json:"cigar_name"`
	Brand         string     `db:"brand" json:"brand,omitempty"`
	Vitola        string     `db:"vitola" json:"vitola,omitempty"`
	Quantity      int        `db:"quantity" json:"quantity"`
	PurchasePrice *float64   `db:"purchase_price" json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `db:"purchase_date" json:"purchase_date,omitempty"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateEntryRequest struct {
	CigarName     string     `json:"cigar_name" validate:"required,max=150"`
	Brand         string     `json:"brand" validate:"max=100"`
	Vitola        string     `json:"vitola" validate:"max=50"`
	Quantity      int        `json:"quantity" validate:"gte=1,lte=10000"`
	PurchasePrice *float64   `json:"purchase_price" validate:"omitempty,gte=0"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Notes         string     `json:"notes" validate:"max=1000"`
}

type UpdateEntryRequest struct {
	CigarName     *string    `json:"cigar_name" validate:"omitempty,max=150"`
	Brand         *string    `json:"brand" validate:"omitempty,max=100"`
	Vitola        *string    `json:"vitola" validate:"omitempty,max=50"`
	PurchasePrice *float64   `json:"purchase_price" validate:"omitempty,gte=0"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	Notes         *string    `json:"notes" validate:"omitempty,max=1000"`
}

// AdjustQuantityRequest changes an entry's count by a signed delta, e.g.
// -1 when a cigar is smoked.
type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}
