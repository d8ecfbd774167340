package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/pkg/errcodes"
)

// ListingRepository: шлюз к листингам внешнего каталога.
type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (entity.Listing, error) {
	query := `
		SELECT id, seller_id, card_id, title, price, status, created_at, updated_at
		FROM listings
		WHERE id = $1`

	var schema listingSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Listing{}, domain.NewNotFoundError(errcodes.ListingNotFound, "listing not found")
		}
		return entity.Listing{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get listing")
	}

	return schema.toDomain(), nil
}

// MarkSold переводит листинг active -> sold. false: листинг уже не активен.
func (r *ListingRepository) MarkSold(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE listings
		SET status = 'sold', updated_at = now()
		WHERE id = $1 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to mark listing sold")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to get affected rows")
	}

	return rows == 1, nil
}
