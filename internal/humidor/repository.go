// internal/humidor/repository.go
package humidor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines humidor inventory storage operations
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, entryID int64) (*Entry, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Entry, error)
	Update(ctx context.Context, entryID int64, req *UpdateEntryRequest) error
	AdjustQuantity(ctx context.Context, entryID int64, delta int) (int, error)
	Delete(ctx context.Context, entryID int64) error
}

type sqlxRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new humidor repository
func NewRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

func (r *sqlxRepository) Create(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO humidor_entries (user_id, cigar_name, brand, vitola, quantity, purchase_price, purchase_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.CigarName, entry.Brand, entry.Vitola,
		entry.Quantity, entry.PurchasePrice, entry.PurchaseDate, entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create humidor entry: %w", err)
	}
	return nil
}

func (r *sqlxRepository) GetByID(ctx context.Context, entryID int64) (*Entry, error) {
	var entry Entry
	err := r.db.GetContext(ctx, &entry,
		`SELECT * FROM humidor_entries WHERE id = $1`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get humidor entry: %w", err)
	}
	return &entry, nil
}

func (r *sqlxRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM humidor_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list humidor entries: %w", err)
	}
	return entries, nil
}

func (r *sqlxRepository) Update(ctx context.Context, entryID int64, req *UpdateEntryRequest) error {
	query := `
		UPDATE humidor_entries SET
			cigar_name = COALESCE($2, cigar_name),
			brand = COALESCE($3, brand),
			vitola = COALESCE($4, vitola),
			purchase_price = COALESCE($5, purchase_price),
			purchase_date = COALESCE($6, purchase_date),
			notes = COALESCE($7, notes),
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		entryID, req.CigarName, req.Brand, req.Vitola,
		req.PurchasePrice, req.PurchaseDate, req.Notes)
	if err != nil {
		return fmt.Errorf("failed to update humidor entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *sqlxRepository) AdjustQuantity(ctx context.Context, entryID int64, delta int) (int, error) {
	// GREATEST clamps at zero so over-decrementing empties the entry
	// instead of going negative.
	var quantity int
	err := r.db.QueryRowContext(ctx, `
		UPDATE humidor_entries
		SET quantity = GREATEST(quantity + $2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING quantity`,
		entryID, delta,
	).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEntryNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	return quantity, nil
}

func (r *sqlxRepository) Delete(ctx context.Context, entryID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM humidor_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete humidor entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}
