package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusDeclined  OfferStatus = "declined"
	OfferStatusCancelled OfferStatus = "cancelled"
	OfferStatusCompleted OfferStatus = "completed"
)

func (s OfferStatus) String() string {
	return string(s)
}

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusDeclined, OfferStatusCancelled, OfferStatusCompleted:
		return true
	}
	return false
}

// OfferEvent: действие над оффером, переводящее его в другой статус.
type OfferEvent string

const (
	OfferEventAccept  OfferEvent = "accept"
	OfferEventDecline OfferEvent = "decline"
	OfferEventCancel  OfferEvent = "cancel"
	OfferEventSettle  OfferEvent = "settle"
)

// OfferTransition описывает единственный легальный переход для события.
type OfferTransition struct {
	Event OfferEvent
	From  OfferStatus
	To    OfferStatus
}

//nolint:gochecknoglobals
var offerTransitions = map[OfferEvent]OfferTransition{
	OfferEventAccept:  {Event: OfferEventAccept, From: OfferStatusPending, To: OfferStatusAccepted},
	OfferEventDecline: {Event: OfferEventDecline, From: OfferStatusPending, To: OfferStatusDeclined},
	OfferEventCancel:  {Event: OfferEventCancel, From: OfferStatusPending, To: OfferStatusCancelled},
	OfferEventSettle:  {Event: OfferEventSettle, From: OfferStatusAccepted, To: OfferStatusCompleted},
}

// TransitionFor возвращает переход для события.
func TransitionFor(event OfferEvent) (OfferTransition, bool) {
	t, ok := offerTransitions[event]
	return t, ok
}

// CanTransitionTo проверяет, есть ли в таблице переход from -> to.
func (s OfferStatus) CanTransitionTo(to OfferStatus) bool {
	for _, t := range offerTransitions {
		if t.From == s && t.To == to {
			return true
		}
	}
	return false
}

// TransitionRequest: условное обновление статуса оффера.
// Запись применяется только если текущий статус равен Transition.From.
type TransitionRequest struct {
	OfferID         uuid.UUID
	Transition      OfferTransition
	ResponseMessage *string
	At              time.Time
}

type Offer struct {
	ID              uuid.UUID
	ListingID       uuid.UUID
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	CardID          uuid.UUID
	OfferedPrice    decimal.Decimal
	ListingPrice    decimal.Decimal
	Status          OfferStatus
	InitialMessage  string
	ResponseMessage string
	ResolvedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsParticipant: пользователь является покупателем или продавцом.
func (o Offer) IsParticipant(userID uuid.UUID) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

var (
	ErrSelfOffer             = errors.New("buyer is the listing seller")
	ErrOfferPriceNotPositive = errors.New("offered price must be positive")
)

// NewOffer создаёт pending-оффер со снимком цены и продавца листинга.
// Покупатель не может совпадать с продавцом, цена строго положительна.
func NewOffer(listing Listing, buyerID uuid.UUID, price decimal.Decimal, message string, now time.Time) (Offer, error) {
	if buyerID == listing.SellerID {
		return Offer{}, ErrSelfOffer
	}

	if !price.IsPositive() {
		return Offer{}, ErrOfferPriceNotPositive
	}

	return Offer{
		ID:             uuid.New(),
		ListingID:      listing.ID,
		BuyerID:        buyerID,
		SellerID:       listing.SellerID,
		CardID:         listing.CardID,
		OfferedPrice:   price,
		ListingPrice:   listing.Price,
		Status:         OfferStatusPending,
		InitialMessage: message,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
