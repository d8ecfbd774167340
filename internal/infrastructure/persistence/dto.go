package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"card_market/internal/domain/entity"
)

const offerColumns = `id, listing_id, buyer_id, seller_id, card_id, offered_price, listing_price,
	status, initial_message, response_message, resolved_at, created_at, updated_at`

// offerSchema: строка таблицы trade_offers.
type offerSchema struct {
	ID              uuid.UUID       `db:"id"`
	ListingID       uuid.UUID       `db:"listing_id"`
	BuyerID         uuid.UUID       `db:"buyer_id"`
	SellerID        uuid.UUID       `db:"seller_id"`
	CardID          uuid.UUID       `db:"card_id"`
	OfferedPrice    decimal.Decimal `db:"offered_price"`
	ListingPrice    decimal.Decimal `db:"listing_price"`
	Status          string          `db:"status"`
	InitialMessage  string          `db:"initial_message"`
	ResponseMessage string          `db:"response_message"`
	ResolvedAt      *time.Time      `db:"resolved_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func fromOffer(o entity.Offer) offerSchema {
	return offerSchema{
		ID:              o.ID,
		ListingID:       o.ListingID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		CardID:          o.CardID,
		OfferedPrice:    o.OfferedPrice,
		ListingPrice:    o.ListingPrice,
		Status:          string(o.Status),
		InitialMessage:  o.InitialMessage,
		ResponseMessage: o.ResponseMessage,
		ResolvedAt:      o.ResolvedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (s offerSchema) toDomain() entity.Offer {
	return entity.Offer{
		ID:              s.ID,
		ListingID:       s.ListingID,
		BuyerID:         s.BuyerID,
		SellerID:        s.SellerID,
		CardID:          s.CardID,
		OfferedPrice:    s.OfferedPrice,
		ListingPrice:    s.ListingPrice,
		Status:          entity.OfferStatus(s.Status),
		InitialMessage:  s.InitialMessage,
		ResponseMessage: s.ResponseMessage,
		ResolvedAt:      utcPtr(s.ResolvedAt),
		CreatedAt:       s.CreatedAt.UTC(),
		UpdatedAt:       s.UpdatedAt.UTC(),
	}
}

type listingSchema struct {
	ID        uuid.UUID       `db:"id"`
	SellerID  uuid.UUID       `db:"seller_id"`
	CardID    uuid.UUID       `db:"card_id"`
	Title     string          `db:"title"`
	Price     decimal.Decimal `db:"price"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (s listingSchema) toDomain() entity.Listing {
	return entity.Listing{
		ID:        s.ID,
		SellerID:  s.SellerID,
		CardID:    s.CardID,
		Title:     s.Title,
		Price:     s.Price,
		Status:    entity.ListingStatus(s.Status),
		CreatedAt: s.CreatedAt.UTC(),
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}

const transactionColumns = `id, buyer_id, seller_id, offer_id, listing_id, card_id, amount,
	session_id, charge_id, status, completed_at, created_at`

type transactionSchema struct {
	ID          uuid.UUID       `db:"id"`
	BuyerID     uuid.UUID       `db:"buyer_id"`
	SellerID    uuid.UUID       `db:"seller_id"`
	OfferID     uuid.UUID       `db:"offer_id"`
	ListingID   uuid.UUID       `db:"listing_id"`
	CardID      uuid.UUID       `db:"card_id"`
	Amount      decimal.Decimal `db:"amount"`
	SessionID   string          `db:"session_id"`
	ChargeID    string          `db:"charge_id"`
	Status      string          `db:"status"`
	CompletedAt *time.Time      `db:"completed_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

func fromTransaction(t entity.Transaction) transactionSchema {
	return transactionSchema{
		ID:          t.ID,
		BuyerID:     t.BuyerID,
		SellerID:    t.SellerID,
		OfferID:     t.OfferID,
		ListingID:   t.ListingID,
		CardID:      t.CardID,
		Amount:      t.Amount,
		SessionID:   t.SessionID,
		ChargeID:    t.ChargeID,
		Status:      string(t.Status),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

func (s transactionSchema) toDomain() entity.Transaction {
	return entity.Transaction{
		ID:          s.ID,
		BuyerID:     s.BuyerID,
		SellerID:    s.SellerID,
		OfferID:     s.OfferID,
		ListingID:   s.ListingID,
		CardID:      s.CardID,
		Amount:      s.Amount,
		SessionID:   s.SessionID,
		ChargeID:    s.ChargeID,
		Status:      entity.TransactionStatus(s.Status),
		CompletedAt: utcPtr(s.CompletedAt),
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

type notificationSchema struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Kind        string    `db:"kind"`
	Title       string    `db:"title"`
	Body        string    `db:"body"`
	ReferenceID uuid.UUID `db:"reference_id"`
	IsRead      bool      `db:"is_read"`
	CreatedAt   time.Time `db:"created_at"`
}

func fromNotification(n entity.Notification) notificationSchema {
	return notificationSchema{
		ID:          n.ID,
		UserID:      n.UserID,
		Kind:        string(n.Kind),
		Title:       n.Title,
		Body:        n.Body,
		ReferenceID: n.ReferenceID,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := t.UTC()

	return &v
}
