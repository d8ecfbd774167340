package offer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/contextx"
	"card_market/pkg/errcodes"
	"card_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type OfferRepository interface {
	Create(ctx context.Context, offer entity.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (entity.Offer, error)
	List(ctx context.Context, filter value.OfferFilter) ([]entity.Offer, error)
	Transition(ctx context.Context, req entity.TransitionRequest) (entity.Offer, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (entity.Listing, error)
}

type CreateRequest struct {
	ListingID      uuid.UUID
	OfferedPrice   decimal.Decimal
	InitialMessage string
}

type Service struct {
	offers   OfferRepository
	listings ListingRepository
	now      func() time.Time
}

func NewService(offers OfferRepository, listings ListingRepository) *Service {
	return &Service{
		offers:   offers,
		listings: listings,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create создаёт pending-оффер покупателя на активный листинг.
func (s *Service) Create(ctx context.Context, buyerID uuid.UUID, req CreateRequest) (entity.Offer, error) {
	if err := value.ValidatePrice(req.OfferedPrice); err != nil {
		return entity.Offer{}, domain.NewValidationError(errcodes.InvalidOfferPrice, err.Error())
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		return entity.Offer{}, fmt.Errorf("listings.GetByID: %w", err)
	}

	if listing.SellerID == buyerID {
		return entity.Offer{}, domain.NewValidationError(errcodes.SelfOffer, "cannot make an offer on your own listing")
	}

	if !listing.IsActive() {
		return entity.Offer{}, domain.NewValidationError(errcodes.ListingNotActive, "listing is not active")
	}

	offer, err := entity.NewOffer(listing, buyerID, req.OfferedPrice, req.InitialMessage, s.now().UTC())
	if err != nil {
		return entity.Offer{}, domain.NewValidationError(errcodes.ValidationError, err.Error())
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return entity.Offer{}, fmt.Errorf("offers.Create: %w", err)
	}

	logger(ctx).Info("offer created",
		slog.String(logx.FieldOfferID, offer.ID.String()),
		slog.String(logx.FieldListingID, offer.ListingID.String()),
		slog.String("offered-price", offer.OfferedPrice.StringFixed(2)),
	)

	return offer, nil
}

func (s *Service) Accept(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error) {
	return s.resolve(ctx, callerID, offerID, entity.OfferEventAccept, responseMessage)
}

func (s *Service) Decline(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error) {
	return s.resolve(ctx, callerID, offerID, entity.OfferEventDecline, responseMessage)
}

func (s *Service) Cancel(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error) {
	return s.resolve(ctx, callerID, offerID, entity.OfferEventCancel, responseMessage)
}

// Get возвращает оффер участнику сделки.
func (s *Service) Get(ctx context.Context, callerID, offerID uuid.UUID) (entity.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return entity.Offer{}, fmt.Errorf("offers.GetByID: %w", err)
	}

	if !offer.IsParticipant(callerID) {
		return entity.Offer{}, domain.NewForbiddenError(errcodes.NotOfferParticipant, "not a participant of the offer")
	}

	return offer, nil
}

func (s *Service) List(ctx context.Context, filter value.OfferFilter) ([]entity.Offer, error) {
	if filter.Status != "" && !entity.OfferStatus(filter.Status).Valid() {
		return nil, domain.NewValidationError(errcodes.InvalidOfferStatus, "unknown offer status")
	}

	offers, err := s.offers.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("offers.List: %w", err)
	}

	return offers, nil
}

func (s *Service) resolve(
	ctx context.Context,
	callerID, offerID uuid.UUID,
	event entity.OfferEvent,
	responseMessage *string,
) (entity.Offer, error) {
	transition, ok := entity.TransitionFor(event)
	if !ok {
		return entity.Offer{}, domain.NewError(errcodes.InternalServerError, "unknown offer event "+string(event))
	}

	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return entity.Offer{}, fmt.Errorf("offers.GetByID: %w", err)
	}

	if err := authorize(offer, callerID, event); err != nil {
		return entity.Offer{}, err
	}

	// Статус проверяется повторно в самом UPDATE; здесь только ранний отказ.
	if offer.Status != transition.From {
		return entity.Offer{}, domain.NewConflictError(errcodes.OfferAlreadyResolved, "offer already resolved")
	}

	updated, err := s.offers.Transition(ctx, entity.TransitionRequest{
		OfferID:         offerID,
		Transition:      transition,
		ResponseMessage: responseMessage,
		At:              s.now().UTC(),
	})
	if err != nil {
		return entity.Offer{}, fmt.Errorf("offers.Transition: %w", err)
	}

	logger(ctx).Info("offer resolved",
		slog.String(logx.FieldOfferID, updated.ID.String()),
		slog.String(logx.FieldOfferStatus, updated.Status.String()),
	)

	return updated, nil
}

func authorize(offer entity.Offer, callerID uuid.UUID, event entity.OfferEvent) error {
	switch event {
	case entity.OfferEventAccept, entity.OfferEventDecline:
		if offer.SellerID != callerID {
			return domain.NewForbiddenError(errcodes.NotOfferSeller, "only the seller can resolve the offer")
		}
	case entity.OfferEventCancel:
		if offer.BuyerID != callerID {
			return domain.NewForbiddenError(errcodes.NotOfferBuyer, "only the buyer can cancel the offer")
		}
	case entity.OfferEventSettle:
		return domain.NewForbiddenError(errcodes.Forbidden, "offers are settled by the payment gateway only")
	}

	return nil
}
