package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"card_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const checkoutSessionPrefix = "checkout:session:"

// CheckoutSessions хранит живые checkout-сессии в Redis с TTL до их истечения.
type CheckoutSessions struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewCheckoutSessions(client redis.UniversalClient) *CheckoutSessions {
	return &CheckoutSessions{
		client: client,
		now:    time.Now,
	}
}

func (c *CheckoutSessions) Get(ctx context.Context, offerID uuid.UUID) (entity.CheckoutSession, bool, error) {
	raw, err := c.client.Get(ctx, key(offerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.CheckoutSession{}, false, nil
		}
		return entity.CheckoutSession{}, false, fmt.Errorf("redis.Get: %w", err)
	}

	var session entity.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return entity.CheckoutSession{}, false, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return session, true, nil
}

// Put не сохраняет уже истёкшие сессии.
func (c *CheckoutSessions) Put(ctx context.Context, session entity.CheckoutSession) error {
	ttl := session.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.client.Set(ctx, key(session.OfferID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	return nil
}

func key(offerID uuid.UUID) string {
	return checkoutSessionPrefix + offerID.String()
}
