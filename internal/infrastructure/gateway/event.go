package gateway

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"card_market/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	metadataOfferID  = "offer_id"
	metadataBuyerID  = "buyer_id"
	metadataSellerID = "seller_id"
)

type eventSchema struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object sessionObject `json:"object"`
	} `json:"data"`
}

type sessionObject struct {
	ID                string            `json:"id"`
	PaymentIntent     string            `json:"payment_intent"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

func ParseEvent(payload []byte) (entity.PaymentEvent, error) {
	var schema eventSchema

	if err := json.Unmarshal(payload, &schema); err != nil {
		return entity.PaymentEvent{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if schema.Type == "" {
		return entity.PaymentEvent{}, fmt.Errorf("event type is empty")
	}

	obj := schema.Data.Object

	offerID := obj.Metadata[metadataOfferID]
	if offerID == "" {
		offerID = obj.ClientReferenceID
	}

	return entity.PaymentEvent{
		ID:          schema.ID,
		Type:        schema.Type,
		SessionID:   obj.ID,
		ChargeID:    obj.PaymentIntent,
		AmountMinor: obj.AmountTotal,
		Currency:    obj.Currency,
		OfferID:     offerID,
		BuyerID:     obj.Metadata[metadataBuyerID],
		SellerID:    obj.Metadata[metadataSellerID],
	}, nil
}
