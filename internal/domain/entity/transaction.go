package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction: неизменяемая запись об оплате оффера.
// SessionID шлюза уникален и служит ключом идемпотентности.
type Transaction struct {
	ID          uuid.UUID
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	OfferID     uuid.UUID
	ListingID   uuid.UUID
	CardID      uuid.UUID
	Amount      decimal.Decimal
	SessionID   string
	ChargeID    string
	Status      TransactionStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// NewCompletedTransaction materializes the ledger entry for a settled offer.
func NewCompletedTransaction(offer Offer, sessionID, chargeID string, now time.Time) Transaction {
	return Transaction{
		ID:          uuid.New(),
		BuyerID:     offer.BuyerID,
		SellerID:    offer.SellerID,
		OfferID:     offer.ID,
		ListingID:   offer.ListingID,
		CardID:      offer.CardID,
		Amount:      offer.OfferedPrice,
		SessionID:   sessionID,
		ChargeID:    chargeID,
		Status:      TransactionStatusCompleted,
		CompletedAt: &now,
		CreatedAt:   now,
	}
}
