package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"card_market/internal/config"
	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/errcodes"
	"card_market/pkg/httpx"
	"card_market/pkg/logx"
)

const sessionsPath = "/v1/checkout/sessions"

// apiKey: статический секретный ключ шлюза в роли bearer-токена.
type apiKey string

func (k apiKey) Authenticate(context.Context) error {
	if k == "" {
		return errors.New("gateway secret key is empty")
	}

	return nil
}

func (k apiKey) BearerToken() string {
	return string(k)
}

type Client struct {
	httpClient *http.Client
	cfg        config.Gateway
	now        func() time.Time
}

func NewClient(cfg config.Gateway, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker())}, opts...)

	transport := httpx.NewAuthBearerRoundTripper(
		httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		apiKey(cfg.SecretKey),
	)

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg: cfg,
		now: time.Now,
	}
}

type lineItem struct {
	Name        string `json:"name"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
}

type createSessionRequest struct {
	Mode              string            `json:"mode"`
	ClientReferenceID string            `json:"client_reference_id"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	ExpiresAt         int64             `json:"expires_at"`
	LineItems         []lineItem        `json:"line_items"`
	Metadata          map[string]string `json:"metadata"`
}

type createSessionResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateCheckoutSession открывает hosted-checkout сессию. Таймаут и сетевые
// ошибки возвращаются с кодом GatewayUnavailable.
func (c *Client) CreateCheckoutSession(ctx context.Context, req entity.CheckoutRequest) (entity.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(createSessionRequest{
		Mode:              "payment",
		ClientReferenceID: req.OfferID.String(),
		SuccessURL:        c.cfg.SuccessURL,
		CancelURL:         c.cfg.CancelURL,
		ExpiresAt:         c.now().Add(c.cfg.SessionTTL).Unix(),
		LineItems: []lineItem{{
			Name:        req.Title,
			AmountMinor: value.MinorUnits(req.Amount),
			Currency:    c.cfg.Currency,
			Quantity:    1,
		}},
		Metadata: map[string]string{
			metadataOfferID:  req.OfferID.String(),
			metadataBuyerID:  req.BuyerID.String(),
			metadataSellerID: req.SellerID.String(),
		},
	})
	if err != nil {
		return entity.CheckoutSession{}, domain.WrapError(err, errcodes.InternalServerError, "failed to encode session request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return entity.CheckoutSession{}, domain.WrapError(err, errcodes.InternalServerError, "failed to build session request")
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return entity.CheckoutSession{}, domain.WrapError(err, errcodes.GatewayUnavailable, "payment gateway timed out")
		}

		return entity.CheckoutSession{}, domain.WrapError(err, errcodes.GatewayUnavailable, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.CheckoutSession{}, domain.WrapError(err, errcodes.GatewayUnavailable, "failed to read gateway response")
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return entity.CheckoutSession{}, domain.NewError(errcodes.GatewayUnavailable,
			fmt.Sprintf("payment gateway responded %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		return entity.CheckoutSession{}, domain.NewError(errcodes.GatewayRejected,
			fmt.Sprintf("payment gateway rejected session: %d", resp.StatusCode))
	}

	var session createSessionResponse
	if err := json.Unmarshal(payload, &session); err != nil {
		return entity.CheckoutSession{}, domain.WrapError(err, errcodes.GatewayRejected, "malformed gateway response")
	}

	if session.ID == "" || session.URL == "" {
		return entity.CheckoutSession{}, domain.NewError(errcodes.GatewayRejected, "gateway response without session")
	}

	return entity.CheckoutSession{
		ID:          session.ID,
		OfferID:     req.OfferID,
		RedirectURL: session.URL,
		ExpiresAt:   time.Unix(session.ExpiresAt, 0).UTC(),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
