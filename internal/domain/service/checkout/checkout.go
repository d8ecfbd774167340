package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/pkg/contextx"
	"card_market/pkg/errcodes"
	"card_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type OfferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (entity.Offer, error)
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error)
}

// SessionCache хранит живую сессию оффера до её истечения.
type SessionCache interface {
	Get(ctx context.Context, offerID uuid.UUID) (entity.CheckoutSession, bool, error)
	Put(ctx context.Context, session entity.CheckoutSession) error
}

type Service struct {
	offers   OfferRepository
	gateway  Gateway
	sessions SessionCache
	now      func() time.Time
}

func NewService(offers OfferRepository, gateway Gateway) *Service {
	return &Service{
		offers:  offers,
		gateway: gateway,
		now:     time.Now,
	}
}

func (s *Service) WithSessionCache(sessions SessionCache) *Service {
	s.sessions = sessions
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSession открывает hosted-checkout сессию для принятого оффера.
// Оффер при этом не изменяется.
func (s *Service) CreateSession(ctx context.Context, callerID, offerID uuid.UUID) (entity.CheckoutSession, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("offers.GetByID: %w", err)
	}

	if offer.BuyerID != callerID {
		return entity.CheckoutSession{}, domain.NewForbiddenError(errcodes.NotOfferBuyer, "only the buyer can pay for the offer")
	}

	if offer.Status != entity.OfferStatusAccepted {
		return entity.CheckoutSession{}, domain.NewConflictError(errcodes.OfferNotAccepted, "offer is not accepted")
	}

	if session, ok := s.cached(ctx, offerID); ok {
		return session, nil
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, entity.CheckoutRequest{
		OfferID:  offer.ID,
		BuyerID:  offer.BuyerID,
		SellerID: offer.SellerID,
		Amount:   offer.OfferedPrice,
		Title:    "Card offer " + offer.ID.String(),
	})
	if err != nil {
		return entity.CheckoutSession{}, fmt.Errorf("gateway.CreateCheckoutSession: %w", err)
	}

	session.OfferID = offer.ID

	if s.sessions != nil {
		if err := s.sessions.Put(ctx, session); err != nil {
			logger(ctx).Warn("checkout session not cached", logx.Error(err))
		}
	}

	logger(ctx).Info("checkout session created",
		slog.String(logx.FieldOfferID, offer.ID.String()),
		slog.String(logx.FieldSessionID, session.ID),
	)

	return session, nil
}

func (s *Service) cached(ctx context.Context, offerID uuid.UUID) (entity.CheckoutSession, bool) {
	if s.sessions == nil {
		return entity.CheckoutSession{}, false
	}

	session, ok, err := s.sessions.Get(ctx, offerID)
	if err != nil {
		logger(ctx).Warn("checkout session cache unavailable", logx.Error(err))
		return entity.CheckoutSession{}, false
	}

	if !ok || !session.ExpiresAt.After(s.now()) {
		return entity.CheckoutSession{}, false
	}

	return session, true
}
