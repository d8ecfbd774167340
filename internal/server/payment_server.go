package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"

	"card_market/internal/domain/entity"
	"card_market/internal/domain/service/settlement"
	"card_market/internal/infrastructure/gateway"
	"card_market/pkg/errcodes"
	"card_market/pkg/httpx/reply"
	"card_market/pkg/httpx/req"
	"card_market/pkg/rest"
)

const maxWebhookBodyBytes = 1 << 20

type checkoutService interface {
	CreateSession(ctx context.Context, callerID, offerID uuid.UUID) (entity.CheckoutSession, error)
}

type settlementService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (settlement.Outcome, error)
}

type PaymentServer struct {
	checkoutService   checkoutService
	settlementService settlementService
}

func NewPaymentServer(checkoutService checkoutService, settlementService settlementService) PaymentServer {
	return PaymentServer{
		checkoutService:   checkoutService,
		settlementService: settlementService,
	}
}

func (s PaymentServer) postV1PaymentSessions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	var request rest.CreateCheckoutSessionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	offerID, err := parseOfferID(request.OfferID)
	if err != nil {
		return err
	}

	session, err := s.checkoutService.CreateSession(ctx, caller, offerID)
	if err != nil {
		return fmt.Errorf("checkoutService.CreateSession: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCheckoutSession(session))

	return nil
}

// postV1PaymentWebhook отвечает 200 на любое событие с верной подписью.
func (s PaymentServer) postV1PaymentWebhook(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("io.ReadAll: %w", err),
			failure.WithCode(errcodes.ValidationError),
		)
	}

	// Доставка доводится до конца, даже если шлюз оборвал соединение.
	settleCtx := context.WithoutCancel(ctx)

	if _, err := s.settlementService.HandleWebhook(settleCtx, payload, r.Header.Get(gateway.SignatureHeader)); err != nil {
		return fmt.Errorf("settlementService.HandleWebhook: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.WebhookAck{Received: true})

	return nil
}
