// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// Offer Предложение покупателя по листингу
type Offer struct {
	ID              string     `json:"id"`
	ListingID       string     `json:"listingId"`
	BuyerID         string     `json:"buyerId"`
	SellerID        string     `json:"sellerId"`
	CardID          string     `json:"cardId"`
	OfferedPrice    string     `json:"offeredPrice"`
	ListingPrice    string     `json:"listingPrice"`
	Status          string     `json:"status"`
	InitialMessage  string     `json:"initialMessage"`
	ResponseMessage string     `json:"responseMessage"`
	ResolvedAt      *time.Time `json:"resolvedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type OfferList struct {
	Items []Offer `json:"items"`
}

// CreateOfferRequest Цена передаётся строкой, не более двух знаков после точки
type CreateOfferRequest struct {
	ListingID      string `json:"listingId" validate:"required,uuid"`
	OfferedPrice   string `json:"offeredPrice" validate:"required"`
	InitialMessage string `json:"initialMessage" validate:"max=1000"`
}

type ResolveOfferRequest struct {
	ResponseMessage *string `json:"responseMessage" validate:"omitempty,max=1000"`
}

type CreateCheckoutSessionRequest struct {
	OfferID string `json:"offerId" validate:"required,uuid"`
}

type CheckoutSession struct {
	SessionID   string    `json:"sessionId"`
	RedirectURL string    `json:"redirectUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Transaction struct {
	ID          string     `json:"id"`
	OfferID     string     `json:"offerId"`
	ListingID   string     `json:"listingId"`
	CardID      string     `json:"cardId"`
	BuyerID     string     `json:"buyerId"`
	SellerID    string     `json:"sellerId"`
	Amount      string     `json:"amount"`
	SessionID   string     `json:"sessionId"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type TransactionList struct {
	Items []Transaction `json:"items"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID Идентификатор запроса для обращения в поддержку
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
