package offer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/service/offer"
	"card_market/internal/domain/service/servicetest"
	"card_market/internal/domain/value"
	"card_market/pkg/errcodes"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

type fixture struct {
	svc      *offer.Service
	offers   *servicetest.Offers
	listings *servicetest.Listings
	listing  entity.Listing
	buyer    uuid.UUID
}

func newFixture() fixture {
	listing := entity.Listing{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		CardID:   uuid.New(),
		Title:    "Charizard 1st edition",
		Price:    decimal.RequireFromString("30.00"),
		Status:   entity.ListingStatusActive,
	}

	offers := servicetest.NewOffers()
	listings := servicetest.NewListings(listing)

	return fixture{
		svc:      offer.NewService(offers, listings).WithClock(func() time.Time { return fixedNow }),
		offers:   offers,
		listings: listings,
		listing:  listing,
		buyer:    uuid.New(),
	}
}

func (f fixture) create(t *testing.T) entity.Offer {
	t.Helper()

	o, err := f.svc.Create(context.Background(), f.buyer, offer.CreateRequest{
		ListingID:      f.listing.ID,
		OfferedPrice:   decimal.RequireFromString("25.00"),
		InitialMessage: "would you take 25?",
	})
	require.NoError(t, err)

	return o
}

func ptr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		f := newFixture()

		o := f.create(t)

		rq.Equal(entity.OfferStatusPending, o.Status)
		rq.Equal(f.buyer, o.BuyerID)
		rq.Equal(f.listing.SellerID, o.SellerID)
		rq.True(o.ListingPrice.Equal(decimal.RequireFromString("30.00")))
		rq.Nil(o.ResolvedAt)
		rq.Equal(fixedNow, o.CreatedAt)

		stored, err := f.offers.GetByID(context.Background(), o.ID)
		rq.NoError(err)
		rq.Equal(o.ID, stored.ID)
	})

	tests := []struct {
		name    string
		prepare func(f *fixture) (uuid.UUID, offer.CreateRequest)
		code    failure.ErrorCode
		check   func(error) bool
	}{
		{
			name: "self offer",
			prepare: func(f *fixture) (uuid.UUID, offer.CreateRequest) {
				return f.listing.SellerID, offer.CreateRequest{ListingID: f.listing.ID, OfferedPrice: decimal.NewFromInt(10)}
			},
			code:  errcodes.SelfOffer,
			check: failure.IsInvalidArgumentError,
		},
		{
			name: "inactive listing",
			prepare: func(f *fixture) (uuid.UUID, offer.CreateRequest) {
				l := f.listing
				l.Status = entity.ListingStatusSold
				f.listings.Put(l)
				return f.buyer, offer.CreateRequest{ListingID: f.listing.ID, OfferedPrice: decimal.NewFromInt(10)}
			},
			code:  errcodes.ListingNotActive,
			check: failure.IsInvalidArgumentError,
		},
		{
			name: "non positive price",
			prepare: func(f *fixture) (uuid.UUID, offer.CreateRequest) {
				return f.buyer, offer.CreateRequest{ListingID: f.listing.ID, OfferedPrice: decimal.Zero}
			},
			code:  errcodes.InvalidOfferPrice,
			check: failure.IsInvalidArgumentError,
		},
		{
			name: "unknown listing",
			prepare: func(f *fixture) (uuid.UUID, offer.CreateRequest) {
				return f.buyer, offer.CreateRequest{ListingID: uuid.New(), OfferedPrice: decimal.NewFromInt(10)}
			},
			code:  errcodes.ListingNotFound,
			check: failure.IsNotFoundError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rq := require.New(t)
			f := newFixture()

			caller, req := tt.prepare(&f)

			_, err := f.svc.Create(context.Background(), caller, req)
			rq.Error(err)
			rq.True(tt.check(err))
			rq.True(domain.HasCode(err, tt.code))
		})
	}
}

func TestService_Transitions(t *testing.T) {
	t.Parallel()

	type action func(s *offer.Service, caller, id uuid.UUID) (entity.Offer, error)

	accept := func(s *offer.Service, caller, id uuid.UUID) (entity.Offer, error) {
		return s.Accept(context.Background(), caller, id, ptr("deal"))
	}
	decline := func(s *offer.Service, caller, id uuid.UUID) (entity.Offer, error) {
		return s.Decline(context.Background(), caller, id, nil)
	}
	cancel := func(s *offer.Service, caller, id uuid.UUID) (entity.Offer, error) {
		return s.Cancel(context.Background(), caller, id, nil)
	}

	tests := []struct {
		name   string
		do     action
		seller bool
		want   entity.OfferStatus
	}{
		{name: "accept", do: accept, seller: true, want: entity.OfferStatusAccepted},
		{name: "decline", do: decline, seller: true, want: entity.OfferStatusDeclined},
		{name: "cancel", do: cancel, seller: false, want: entity.OfferStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rq := require.New(t)
			f := newFixture()
			o := f.create(t)

			actor, other := f.buyer, f.listing.SellerID
			if tt.seller {
				actor, other = other, actor
			}

			_, err := tt.do(f.svc, other, o.ID)
			rq.True(failure.IsForbiddenError(err))

			_, err = tt.do(f.svc, uuid.New(), o.ID)
			rq.True(failure.IsForbiddenError(err))

			stored, err := f.offers.GetByID(context.Background(), o.ID)
			rq.NoError(err)
			rq.Equal(entity.OfferStatusPending, stored.Status)

			got, err := tt.do(f.svc, actor, o.ID)
			rq.NoError(err)
			rq.Equal(tt.want, got.Status)
			rq.NotNil(got.ResolvedAt)
			rq.True(got.ListingPrice.Equal(o.ListingPrice))

			_, err = tt.do(f.svc, actor, o.ID)
			rq.True(failure.IsConflictError(err))
			rq.True(domain.HasCode(err, errcodes.OfferAlreadyResolved))
		})
	}

	t.Run("unknown offer", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		_, err := f.svc.Accept(context.Background(), f.listing.SellerID, uuid.New(), nil)
		require.True(t, failure.IsNotFoundError(err))
	})

	t.Run("response message recorded", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		f := newFixture()
		o := f.create(t)

		got, err := f.svc.Accept(context.Background(), f.listing.SellerID, o.ID, ptr("deal"))
		rq.NoError(err)
		rq.Equal("deal", got.ResponseMessage)
		rq.Equal(fixedNow, *got.ResolvedAt)
	})
}

func TestService_AcceptCancelRace(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		rq := require.New(t)
		f := newFixture()
		o := f.create(t)

		var (
			wg                   sync.WaitGroup
			acceptErr, cancelErr error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = f.svc.Accept(context.Background(), f.listing.SellerID, o.ID, nil)
		}()
		go func() {
			defer wg.Done()
			_, cancelErr = f.svc.Cancel(context.Background(), f.buyer, o.ID, nil)
		}()
		wg.Wait()

		rq.True((acceptErr == nil) != (cancelErr == nil), "exactly one must win")

		stored, err := f.offers.GetByID(context.Background(), o.ID)
		rq.NoError(err)

		if acceptErr == nil {
			rq.True(failure.IsConflictError(cancelErr))
			rq.Equal(entity.OfferStatusAccepted, stored.Status)
		} else {
			rq.True(failure.IsConflictError(acceptErr))
			rq.Equal(entity.OfferStatusCancelled, stored.Status)
		}
	}
}

func TestService_Get(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	f := newFixture()
	o := f.create(t)

	got, err := f.svc.Get(context.Background(), f.buyer, o.ID)
	rq.NoError(err)
	rq.Equal(o.ID, got.ID)

	_, err = f.svc.Get(context.Background(), f.listing.SellerID, o.ID)
	rq.NoError(err)

	_, err = f.svc.Get(context.Background(), uuid.New(), o.ID)
	rq.True(failure.IsForbiddenError(err))
}

func TestService_List(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	f := newFixture()
	o := f.create(t)

	paging, err := value.NewPaging(0, 0)
	rq.NoError(err)

	asSeller, err := f.svc.List(context.Background(), value.OfferFilter{
		UserID: f.listing.SellerID,
		Role:   value.OfferRoleSeller,
		Paging: paging,
	})
	rq.NoError(err)
	rq.Len(asSeller, 1)
	rq.Equal(o.ID, asSeller[0].ID)

	accepted, err := f.svc.List(context.Background(), value.OfferFilter{
		UserID: f.buyer,
		Role:   value.OfferRoleBuyer,
		Status: string(entity.OfferStatusAccepted),
		Paging: paging,
	})
	rq.NoError(err)
	rq.Empty(accepted)

	_, err = f.svc.List(context.Background(), value.OfferFilter{UserID: f.buyer, Status: "bogus", Paging: paging})
	rq.True(failure.IsInvalidArgumentError(err))
}
