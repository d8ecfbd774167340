package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NotificationKind string

const NotificationKindPaymentReceived NotificationKind = "payment_received"

type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Kind        NotificationKind
	Title       string
	Body        string
	ReferenceID uuid.UUID
	IsRead      bool
	CreatedAt   time.Time
}

// PaymentReceived: полезная нагрузка уведомления продавца об оплате.
type PaymentReceived struct {
	OfferID   uuid.UUID       `json:"offerId"`
	SellerID  uuid.UUID       `json:"sellerId"`
	BuyerID   uuid.UUID       `json:"buyerId"`
	Amount    decimal.Decimal `json:"amount"`
	SessionID string          `json:"sessionId"`
}
