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

// TransactionRepository: журнал оплат. Записи только добавляются.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Record добавляет запись. Повтор по session_id или offer_id возвращает
// ошибку с кодом DuplicateSettlement.
func (r *TransactionRepository) Record(ctx context.Context, tx entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (:id, :buyer_id, :seller_id, :offer_id, :listing_id, :card_id, :amount,
			:session_id, :charge_id, :status, :completed_at, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, fromTransaction(tx)); err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(err, errcodes.DuplicateSettlement, "transaction already recorded")
		}
		return domain.WrapError(err, errcodes.InternalServerError, "failed to record transaction")
	}

	return nil
}

func (r *TransactionRepository) GetByOfferID(ctx context.Context, offerID uuid.UUID) (entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE offer_id = $1`

	var schema transactionSchema
	if err := r.db.GetContext(ctx, &schema, query, offerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Transaction{}, domain.NewNotFoundError(errcodes.TransactionNotFound, "transaction not found")
		}
		return entity.Transaction{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get transaction")
	}

	return schema.toDomain(), nil
}

// ListByUser возвращает оплаты, где пользователь покупатель или продавец.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, paging value.Paging) ([]entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	var schemas []transactionSchema
	if err := r.db.SelectContext(ctx, &schemas, query, userID, paging.Limit, paging.Offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list transactions")
	}

	return lox.Map(schemas, transactionSchema.toDomain), nil
}
