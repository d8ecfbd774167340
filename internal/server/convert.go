package server

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"

	"card_market/internal/domain/entity"
	"card_market/internal/domain/service/offer"
	"card_market/internal/domain/value"
	"card_market/pkg/contextx"
	"card_market/pkg/errcodes"
	"card_market/pkg/lox"
	"card_market/pkg/rest"
)

func newRESTOffer(o entity.Offer) rest.Offer {
	return rest.Offer{
		ID:              o.ID.String(),
		ListingID:       o.ListingID.String(),
		BuyerID:         o.BuyerID.String(),
		SellerID:        o.SellerID.String(),
		CardID:          o.CardID.String(),
		OfferedPrice:    o.OfferedPrice.StringFixed(2),
		ListingPrice:    o.ListingPrice.StringFixed(2),
		Status:          o.Status.String(),
		InitialMessage:  o.InitialMessage,
		ResponseMessage: o.ResponseMessage,
		ResolvedAt:      o.ResolvedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func newRESTOfferList(offers []entity.Offer) rest.OfferList {
	return rest.OfferList{Items: lox.Map(offers, newRESTOffer)}
}

func newRESTTransaction(t entity.Transaction) rest.Transaction {
	return rest.Transaction{
		ID:          t.ID.String(),
		OfferID:     t.OfferID.String(),
		ListingID:   t.ListingID.String(),
		CardID:      t.CardID.String(),
		BuyerID:     t.BuyerID.String(),
		SellerID:    t.SellerID.String(),
		Amount:      t.Amount.StringFixed(2),
		SessionID:   t.SessionID,
		Status:      string(t.Status),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

func newRESTCheckoutSession(s entity.CheckoutSession) rest.CheckoutSession {
	return rest.CheckoutSession{
		SessionID:   s.ID,
		RedirectURL: s.RedirectURL,
		ExpiresAt:   s.ExpiresAt,
	}
}

func newDomainCreateOffer(request rest.CreateOfferRequest) (offer.CreateRequest, error) {
	listingID, err := value.ParseID(request.ListingID)
	if err != nil {
		return offer.CreateRequest{}, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseID: %w", err),
			failure.WithCode(errcodes.InvalidListingID),
		)
	}

	price, err := value.ParsePrice(request.OfferedPrice)
	if err != nil {
		return offer.CreateRequest{}, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParsePrice: %w", err),
			failure.WithCode(errcodes.InvalidOfferPrice),
			failure.WithDescription(err.Error()),
		)
	}

	return offer.CreateRequest{
		ListingID:      listingID,
		OfferedPrice:   price,
		InitialMessage: request.InitialMessage,
	}, nil
}

func parseOfferID(raw string) (uuid.UUID, error) {
	id, err := value.ParseID(raw)
	if err != nil {
		return uuid.Nil, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseID: %w", err),
			failure.WithCode(errcodes.InvalidOfferID),
		)
	}

	return id, nil
}

func parsePaging(query url.Values) (value.Paging, error) {
	limit, err := atoiOrZero(query.Get("limit"))
	if err != nil {
		return value.Paging{}, invalidPaging(err)
	}

	offset, err := atoiOrZero(query.Get("offset"))
	if err != nil {
		return value.Paging{}, invalidPaging(err)
	}

	paging, err := value.NewPaging(limit, offset)
	if err != nil {
		return value.Paging{}, invalidPaging(err)
	}

	return paging, nil
}

func parseOfferFilter(callerID uuid.UUID, query url.Values) (value.OfferFilter, error) {
	role, err := value.ParseOfferRole(query.Get("role"))
	if err != nil {
		return value.OfferFilter{}, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseOfferRole: %w", err),
			failure.WithCode(errcodes.InvalidOfferRole),
		)
	}

	paging, err := parsePaging(query)
	if err != nil {
		return value.OfferFilter{}, err
	}

	return value.OfferFilter{
		UserID: callerID,
		Role:   role,
		Status: query.Get("status"),
		Paging: paging,
	}, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

func invalidPaging(err error) error {
	return failure.NewInvalidArgumentErrorFromError(err,
		failure.WithCode(errcodes.InvalidPaging),
		failure.WithDescription(err.Error()),
	)
}

// callerID достаёт пользователя, установленного middlewarex.Auth.
func callerID(ctx context.Context) (uuid.UUID, error) {
	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, failure.NewUnauthorizedError(err.Error(), failure.WithCode(errcodes.AccessTokenInvalid))
	}

	id, err := value.ParseID(userID.String())
	if err != nil {
		return uuid.Nil, failure.NewUnauthorizedError(err.Error(), failure.WithCode(errcodes.InvalidUserID))
	}

	return id, nil
}
