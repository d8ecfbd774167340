package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"card_market/internal/config"
	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/infrastructure/gateway"
	"card_market/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

func gatewayConfig(baseURL string) config.Gateway {
	return config.Gateway{
		BaseURL:    baseURL,
		SecretKey:  "sk_test",
		Currency:   "usd",
		Timeout:    time.Second,
		SuccessURL: "https://market.example.com/paid",
		CancelURL:  "https://market.example.com/cancelled",
		SessionTTL: 30 * time.Minute,
	}
}

func checkoutRequest() entity.CheckoutRequest {
	return entity.CheckoutRequest{
		OfferID:  uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Amount:   decimal.RequireFromString("25.00"),
		Title:    "Card offer",
	}
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)
		req := checkoutRequest()
		expiresAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rq.Equal(http.MethodPost, r.Method)
			rq.Equal("/v1/checkout/sessions", r.URL.Path)
			rq.Equal("Bearer sk_test", r.Header.Get("Authorization"))

			body, err := io.ReadAll(r.Body)
			rq.NoError(err)

			var got struct {
				ClientReferenceID string            `json:"client_reference_id"`
				Metadata          map[string]string `json:"metadata"`
				LineItems         []struct {
					Amount   int64  `json:"amount"`
					Currency string `json:"currency"`
				} `json:"line_items"`
			}
			rq.NoError(json.Unmarshal(body, &got))
			rq.Equal(req.OfferID.String(), got.ClientReferenceID)
			rq.Equal(req.OfferID.String(), got.Metadata["offer_id"])
			rq.Equal(req.BuyerID.String(), got.Metadata["buyer_id"])
			rq.Equal(req.SellerID.String(), got.Metadata["seller_id"])
			rq.Len(got.LineItems, 1)
			rq.Equal(int64(2500), got.LineItems[0].Amount)
			rq.Equal("usd", got.LineItems[0].Currency)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://pay.example.com/c/cs_test_1","expires_at":` +
				strconv.FormatInt(expiresAt.Unix(), 10) + `}`))
		}))
		defer srv.Close()

		session, err := gateway.NewClient(gatewayConfig(srv.URL)).CreateCheckoutSession(context.Background(), req)
		rq.NoError(err)
		rq.Equal("cs_test_1", session.ID)
		rq.Equal(req.OfferID, session.OfferID)
		rq.Equal("https://pay.example.com/c/cs_test_1", session.RedirectURL)
		rq.Equal(expiresAt, session.ExpiresAt)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		rq := require.New(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := gatewayConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond

		_, err := gateway.NewClient(cfg).CreateCheckoutSession(context.Background(), checkoutRequest())
		rq.Error(err)
		rq.True(domain.HasCode(err, errcodes.GatewayUnavailable))
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := gateway.NewClient(gatewayConfig(srv.URL)).CreateCheckoutSession(context.Background(), checkoutRequest())
		require.True(t, domain.HasCode(err, errcodes.GatewayUnavailable))
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad currency"}`))
		}))
		defer srv.Close()

		_, err := gateway.NewClient(gatewayConfig(srv.URL)).CreateCheckoutSession(context.Background(), checkoutRequest())
		require.True(t, domain.HasCode(err, errcodes.GatewayRejected))
	})
}
