package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/service/checkout"
	"card_market/internal/domain/service/servicetest"
	"card_market/pkg/errcodes"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

type fakeGateway struct {
	mu       sync.Mutex
	requests []entity.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return entity.CheckoutSession{}, g.err
	}

	g.requests = append(g.requests, req)

	return entity.CheckoutSession{
		ID:          "cs_" + uuid.NewString(),
		RedirectURL: "https://pay.example.com/c/" + req.OfferID.String(),
		ExpiresAt:   fixedNow.Add(30 * time.Minute),
	}, nil
}

type memorySessions struct {
	sessions map[uuid.UUID]entity.CheckoutSession
	err      error
}

func (m *memorySessions) Get(_ context.Context, offerID uuid.UUID) (entity.CheckoutSession, bool, error) {
	if m.err != nil {
		return entity.CheckoutSession{}, false, m.err
	}
	s, ok := m.sessions[offerID]
	return s, ok, nil
}

func (m *memorySessions) Put(_ context.Context, session entity.CheckoutSession) error {
	if m.err != nil {
		return m.err
	}
	m.sessions[session.OfferID] = session
	return nil
}

func acceptedOffer() entity.Offer {
	return entity.Offer{
		ID:           uuid.New(),
		ListingID:    uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		OfferedPrice: decimal.RequireFromString("25.00"),
		ListingPrice: decimal.RequireFromString("30.00"),
		Status:       entity.OfferStatusAccepted,
	}
}

func TestService_CreateSession(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		o := acceptedOffer()
		gw := &fakeGateway{}
		offers := servicetest.NewOffers(o)
		svc := checkout.NewService(offers, gw).WithClock(func() time.Time { return fixedNow })

		session, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.NoError(err)
		rq.Equal(o.ID, session.OfferID)
		rq.NotEmpty(session.RedirectURL)

		rq.Len(gw.requests, 1)
		rq.Equal(o.ID, gw.requests[0].OfferID)
		rq.Equal(o.BuyerID, gw.requests[0].BuyerID)
		rq.Equal(o.SellerID, gw.requests[0].SellerID)
		rq.True(gw.requests[0].Amount.Equal(o.OfferedPrice))

		stored, err := offers.GetByID(context.Background(), o.ID)
		rq.NoError(err)
		rq.Equal(entity.OfferStatusAccepted, stored.Status)
	})

	t.Run("seller is forbidden", func(t *testing.T) {
		t.Parallel()

		o := acceptedOffer()
		svc := checkout.NewService(servicetest.NewOffers(o), &fakeGateway{})

		_, err := svc.CreateSession(context.Background(), o.SellerID, o.ID)
		require.True(t, failure.IsForbiddenError(err))
	})

	t.Run("not accepted", func(t *testing.T) {
		t.Parallel()

		for _, status := range []entity.OfferStatus{
			entity.OfferStatusPending,
			entity.OfferStatusDeclined,
			entity.OfferStatusCancelled,
			entity.OfferStatusCompleted,
		} {
			rq := require.New(t)
			o := acceptedOffer()
			o.Status = status
			gw := &fakeGateway{}
			svc := checkout.NewService(servicetest.NewOffers(o), gw)

			_, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
			rq.True(failure.IsConflictError(err), status)
			rq.True(domain.HasCode(err, errcodes.OfferNotAccepted))
			rq.Empty(gw.requests)
		}
	})

	t.Run("gateway unavailable leaves offer untouched", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		o := acceptedOffer()
		offers := servicetest.NewOffers(o)
		gw := &fakeGateway{err: domain.NewError(errcodes.GatewayUnavailable, "gateway timeout")}
		svc := checkout.NewService(offers, gw)

		_, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.True(domain.HasCode(err, errcodes.GatewayUnavailable))

		stored, err := offers.GetByID(context.Background(), o.ID)
		rq.NoError(err)
		rq.Equal(entity.OfferStatusAccepted, stored.Status)
	})

	t.Run("live session reused", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		o := acceptedOffer()
		gw := &fakeGateway{}
		cache := &memorySessions{sessions: map[uuid.UUID]entity.CheckoutSession{}}
		svc := checkout.NewService(servicetest.NewOffers(o), gw).
			WithSessionCache(cache).
			WithClock(func() time.Time { return fixedNow })

		first, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.NoError(err)

		second, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.NoError(err)
		rq.Equal(first.ID, second.ID)
		rq.Len(gw.requests, 1)
	})

	t.Run("expired session replaced", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		o := acceptedOffer()
		gw := &fakeGateway{}
		cache := &memorySessions{sessions: map[uuid.UUID]entity.CheckoutSession{
			o.ID: {ID: "cs_old", OfferID: o.ID, ExpiresAt: fixedNow.Add(-time.Minute)},
		}}
		svc := checkout.NewService(servicetest.NewOffers(o), gw).
			WithSessionCache(cache).
			WithClock(func() time.Time { return fixedNow })

		session, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.NoError(err)
		rq.NotEqual("cs_old", session.ID)
		rq.Len(gw.requests, 1)
	})

	t.Run("cache outage degrades to new session", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		o := acceptedOffer()
		gw := &fakeGateway{}
		cache := &memorySessions{err: errors.New("redis down")}
		svc := checkout.NewService(servicetest.NewOffers(o), gw).WithSessionCache(cache)

		_, err := svc.CreateSession(context.Background(), o.BuyerID, o.ID)
		rq.NoError(err)
		rq.Len(gw.requests, 1)
	})
}
