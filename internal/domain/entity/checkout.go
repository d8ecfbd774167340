package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutRequest: запрос на hosted-checkout сессию у платёжного шлюза.
type CheckoutRequest struct {
	OfferID  uuid.UUID
	BuyerID  uuid.UUID
	SellerID uuid.UUID
	Amount   decimal.Decimal
	Title    string
}

type CheckoutSession struct {
	ID          string    `json:"id"`
	OfferID     uuid.UUID `json:"offerId"`
	RedirectURL string    `json:"redirectUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

const PaymentEventCheckoutCompleted = "checkout.session.completed"

// PaymentEvent: проверенное событие шлюза, приведённое к доменному виду.
type PaymentEvent struct {
	ID          string
	Type        string
	SessionID   string
	ChargeID    string
	AmountMinor int64
	Currency    string
	OfferID     string
	BuyerID     string
	SellerID    string
}
