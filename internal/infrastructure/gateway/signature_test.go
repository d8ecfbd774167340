package gateway_test

import (
	"fmt"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"card_market/internal/config"
	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/infrastructure/gateway"
	"card_market/pkg/errcodes"
)

const webhookSecret = "whsec_test"

var signedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func newVerifier() *gateway.Verifier {
	return gateway.NewVerifier(config.Gateway{
		WebhookSecret:      webhookSecret,
		SignatureTolerance: 5 * time.Minute,
	}).WithClock(func() time.Time { return signedAt.Add(time.Minute) })
}

func completedEvent(offerID, buyerID, sellerID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"payment_intent": "pi_1",
			"amount_total": 2500,
			"currency": "usd",
			"client_reference_id": %q,
			"metadata": {"offer_id": %q, "buyer_id": %q, "seller_id": %q}
		}}
	}`, offerID, offerID, buyerID, sellerID))
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":"evt_1","type":"ping"}`)

	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{name: "valid", header: gateway.Sign(webhookSecret, signedAt, payload), ok: true},
		{
			name:   "one of several signatures valid",
			header: gateway.Sign(webhookSecret, signedAt, payload) + ",v1=deadbeef",
			ok:     true,
		},
		{name: "wrong secret", header: gateway.Sign("other", signedAt, payload)},
		{name: "stale", header: gateway.Sign(webhookSecret, signedAt.Add(-time.Hour), payload)},
		{name: "future", header: gateway.Sign(webhookSecret, signedAt.Add(time.Hour), payload)},
		{name: "empty"},
		{name: "no signature", header: fmt.Sprintf("t=%d", signedAt.Unix())},
		{name: "bad timestamp", header: "t=abc,v1=00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rq := require.New(t)

			err := newVerifier().Verify(payload, tt.header)
			if tt.ok {
				rq.NoError(err)
				return
			}

			rq.Error(err)
			rq.True(failure.IsInvalidArgumentError(err))
			rq.True(domain.HasCode(err, errcodes.InvalidSignature))
		})
	}

	t.Run("tampered body", func(t *testing.T) {
		t.Parallel()

		header := gateway.Sign(webhookSecret, signedAt, payload)

		err := newVerifier().Verify([]byte(`{"id":"evt_2","type":"ping"}`), header)
		require.Error(t, err)
	})
}

func TestVerifier_ParseEvent(t *testing.T) {
	t.Parallel()

	rq := require.New(t)

	offerID, buyerID, sellerID := uuid.New(), uuid.New(), uuid.New()
	payload := completedEvent(offerID, buyerID, sellerID)

	verifier := newVerifier()
	rq.NoError(verifier.Verify(payload, gateway.Sign(webhookSecret, signedAt, payload)))

	event, err := verifier.ParseEvent(payload)
	rq.NoError(err)
	rq.Equal(entity.PaymentEventCheckoutCompleted, event.Type)
	rq.Equal("cs_test_1", event.SessionID)
	rq.Equal("pi_1", event.ChargeID)
	rq.Equal(int64(2500), event.AmountMinor)
	rq.Equal(offerID.String(), event.OfferID)
	rq.Equal(buyerID.String(), event.BuyerID)
	rq.Equal(sellerID.String(), event.SellerID)

	_, err = verifier.ParseEvent([]byte("not json"))
	rq.Error(err)
}
