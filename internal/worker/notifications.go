package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"card_market/internal/domain/entity"
	"card_market/internal/infrastructure/notifier"
	"card_market/pkg/application/modules"
	"card_market/pkg/contextx"
	"card_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type NotificationRepository interface {
	Create(ctx context.Context, n entity.Notification) (bool, error)
}

type Alerter interface {
	SendPaymentAlert(ctx context.Context, payment entity.PaymentReceived) error
}

// Notifications: потребитель очереди уведомлений.
type Notifications struct {
	repo    NotificationRepository
	alerter Alerter
	now     func() time.Time
}

func NewNotifications(repo NotificationRepository) *Notifications {
	return &Notifications{
		repo: repo,
		now:  time.Now,
	}
}

func (w *Notifications) WithAlerter(alerter Alerter) *Notifications {
	w.alerter = alerter
	return w
}

func (w *Notifications) Handlers() []modules.AsynqHandler {
	return []modules.AsynqHandler{
		{Pattern: notifier.TypePaymentReceived, Handle: w.HandlePaymentReceived},
	}
}

// HandlePaymentReceived записывает продавцу уведомление об оплате.
// Повторная доставка задачи не создаёт второе уведомление.
func (w *Notifications) HandlePaymentReceived(ctx context.Context, task *asynq.Task) error {
	payment, err := notifier.DecodePaymentReceived(task.Payload())
	if err != nil {
		return fmt.Errorf("notifier.DecodePaymentReceived: %w: %w", err, asynq.SkipRetry)
	}

	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldTaskType, task.Type()),
		slog.String(logx.FieldOfferID, payment.OfferID.String()),
	))

	created, err := w.repo.Create(ctx, entity.Notification{
		ID:          uuid.New(),
		UserID:      payment.SellerID,
		Kind:        entity.NotificationKindPaymentReceived,
		Title:       "Payment received",
		Body:        fmt.Sprintf("The buyer paid %s for your card.", payment.Amount.StringFixed(2)),
		ReferenceID: payment.OfferID,
		CreatedAt:   w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("repo.Create: %w", err)
	}

	if !created {
		logger(ctx).Info("notification already delivered")
		return nil
	}

	if w.alerter != nil {
		if err := w.alerter.SendPaymentAlert(ctx, payment); err != nil {
			logger(ctx).Warn("payment alert not sent", logx.Error(err))
		}
	}

	logger(ctx).Info("seller notified", slog.String(logx.FieldUserID, payment.SellerID.String()))

	return nil
}
