package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"card_market/internal/domain/entity"
	"card_market/pkg/contextx"
	"card_market/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
)

const (
	TypePaymentReceived = "notification:payment_received"
	QueueNotifications  = "notifications"

	enqueueTimeout = 2 * time.Second
	maxRetry       = 5
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue ставит уведомления в очередь asynq. Доставка и запись уведомления
// выполняются воркером вне пути расчёта.
type Queue struct {
	client enqueuer
}

func NewQueue(client enqueuer) *Queue {
	return &Queue{client: client}
}

func (q *Queue) NotifyPaymentReceived(ctx context.Context, payment entity.PaymentReceived) error {
	payload, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	task := asynq.NewTask(TypePaymentReceived, payload)

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.TaskID(TypePaymentReceived+":"+payment.OfferID.String()),
		asynq.MaxRetry(maxRetry),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("client.EnqueueContext: %w", err)
	}

	logger(ctx).Info("notification enqueued",
		slog.String(logx.FieldTaskType, TypePaymentReceived),
		slog.String("task-id", info.ID),
	)

	return nil
}

func DecodePaymentReceived(payload []byte) (entity.PaymentReceived, error) {
	var payment entity.PaymentReceived

	if err := json.Unmarshal(payload, &payment); err != nil {
		return entity.PaymentReceived{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return payment, nil
}
