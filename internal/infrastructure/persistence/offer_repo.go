package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/errcodes"
	"card_market/pkg/lox"
)

type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create сохраняет новый оффер.
func (r *OfferRepository) Create(ctx context.Context, offer entity.Offer) error {
	query := `
		INSERT INTO trade_offers (` + offerColumns + `)
		VALUES (:id, :listing_id, :buyer_id, :seller_id, :card_id, :offered_price, :listing_price,
			:status, :initial_message, :response_message, :resolved_at, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, fromOffer(offer)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to create offer")
	}

	return nil
}

// GetByID возвращает оффер по идентификатору.
func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (entity.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM trade_offers WHERE id = $1`

	var schema offerSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Offer{}, domain.NewNotFoundError(errcodes.OfferNotFound, "offer not found")
		}
		return entity.Offer{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get offer")
	}

	return schema.toDomain(), nil
}

// List возвращает офферы пользователя в роли покупателя или продавца.
func (r *OfferRepository) List(ctx context.Context, filter value.OfferFilter) ([]entity.Offer, error) {
	column := "buyer_id"
	if filter.Role == value.OfferRoleSeller {
		column = "seller_id"
	}

	query := `
		SELECT ` + offerColumns + `
		FROM trade_offers
		WHERE ` + column + ` = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`

	var schemas []offerSchema
	if err := r.db.SelectContext(ctx, &schemas, query,
		filter.UserID, filter.Status, filter.Paging.Limit, filter.Paging.Offset,
	); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list offers")
	}

	return lox.Map(schemas, offerSchema.toDomain), nil
}

// Transition применяет переход одним условным UPDATE. Если строка не
// обновилась, повторное чтение отличает отсутствие оффера от конфликта.
func (r *OfferRepository) Transition(ctx context.Context, req entity.TransitionRequest) (entity.Offer, error) {
	var updated offerSchema

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE trade_offers
			SET status = $1,
				response_message = COALESCE($2, response_message),
				resolved_at = $3,
				updated_at = $3
			WHERE id = $4 AND status = $5
			RETURNING ` + offerColumns

		err := tx.GetContext(ctx, &updated, query,
			string(req.Transition.To), req.ResponseMessage, req.At, req.OfferID, string(req.Transition.From),
		)
		if err == nil {
			return nil
		}

		if !errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update offer status")
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM trade_offers WHERE id = $1)`, req.OfferID); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check offer")
		}

		if !exists {
			return domain.NewNotFoundError(errcodes.OfferNotFound, "offer not found")
		}

		return domain.NewConflictError(errcodes.OfferAlreadyResolved, "offer already resolved")
	})
	if err != nil {
		return entity.Offer{}, err
	}

	return updated.toDomain(), nil
}
