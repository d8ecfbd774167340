package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_market/internal/domain/entity"
	"card_market/internal/infrastructure/notifier"
	"card_market/internal/worker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type memoryNotifications struct {
	mu    sync.Mutex
	items map[string]entity.Notification
	err   error
}

func (m *memoryNotifications) Create(_ context.Context, n entity.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}

	key := n.UserID.String() + string(n.Kind) + n.ReferenceID.String()
	if _, ok := m.items[key]; ok {
		return false, nil
	}

	m.items[key] = n
	return true, nil
}

type countingAlerter struct {
	calls int
}

func (a *countingAlerter) SendPaymentAlert(context.Context, entity.PaymentReceived) error {
	a.calls++
	return errors.New("telegram down")
}

func paymentTask(t *testing.T, p entity.PaymentReceived) *asynq.Task {
	t.Helper()

	payload, err := json.Marshal(p)
	require.NoError(t, err)

	return asynq.NewTask(notifier.TypePaymentReceived, payload)
}

func TestNotifications_HandlePaymentReceived(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	repo := &memoryNotifications{items: map[string]entity.Notification{}}
	alerter := &countingAlerter{}
	w := worker.NewNotifications(repo).WithAlerter(alerter)

	p := entity.PaymentReceived{
		OfferID:   uuid.New(),
		SellerID:  uuid.New(),
		BuyerID:   uuid.New(),
		Amount:    decimal.RequireFromString("25.00"),
		SessionID: "cs_1",
	}

	rq.NoError(w.HandlePaymentReceived(context.Background(), paymentTask(t, p)))
	rq.NoError(w.HandlePaymentReceived(context.Background(), paymentTask(t, p)))

	rq.Len(repo.items, 1)
	rq.Equal(1, alerter.calls)

	for _, n := range repo.items {
		rq.Equal(p.SellerID, n.UserID)
		rq.Equal(p.OfferID, n.ReferenceID)
		rq.Contains(n.Body, "25.00")
	}
}

func TestNotifications_HandlePaymentReceived_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed payload is not retried", func(t *testing.T) {
		t.Parallel()

		w := worker.NewNotifications(&memoryNotifications{items: map[string]entity.Notification{}})

		err := w.HandlePaymentReceived(context.Background(), asynq.NewTask(notifier.TypePaymentReceived, []byte("{")))
		require.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("storage failure is retried", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		w := worker.NewNotifications(&memoryNotifications{err: errors.New("db down")})

		err := w.HandlePaymentReceived(context.Background(), paymentTask(t, entity.PaymentReceived{OfferID: uuid.New()}))
		rq.Error(err)
		rq.NotErrorIs(err, asynq.SkipRetry)
	})
}

func TestNotifications_Handlers(t *testing.T) {
	t.Parallel()

	handlers := worker.NewNotifications(nil).Handlers()

	require.Len(t, handlers, 1)
	require.Equal(t, notifier.TypePaymentReceived, handlers[0].Pattern)
}
