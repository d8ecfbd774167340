package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/pkg/errcodes"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление. Повтор для той же пары (пользователь, ссылка)
// игнорируется; false: запись уже была.
func (r *NotificationRepository) Create(ctx context.Context, n entity.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, reference_id, is_read, created_at)
		VALUES (:id, :user_id, :kind, :title, :body, :reference_id, :is_read, :created_at)
		ON CONFLICT ON CONSTRAINT notifications_reference_key DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, fromNotification(n))
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to create notification")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to get affected rows")
	}

	return rows == 1, nil
}
