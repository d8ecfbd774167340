package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"card_market/internal/domain/entity"
	"card_market/internal/domain/service/offer"
	"card_market/internal/domain/value"
	"card_market/pkg/httpx/reply"
	"card_market/pkg/httpx/req"
	"card_market/pkg/rest"
)

type offerService interface {
	Create(ctx context.Context, buyerID uuid.UUID, req offer.CreateRequest) (entity.Offer, error)
	Accept(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error)
	Decline(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error)
	Cancel(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error)
	Get(ctx context.Context, callerID, offerID uuid.UUID) (entity.Offer, error)
	List(ctx context.Context, filter value.OfferFilter) ([]entity.Offer, error)
}

type resolveFunc func(ctx context.Context, callerID, offerID uuid.UUID, responseMessage *string) (entity.Offer, error)

type OfferServer struct {
	offerService offerService
}

func NewOfferServer(offerService offerService) OfferServer {
	return OfferServer{
		offerService: offerService,
	}
}

func (s OfferServer) postV1Offers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	var request rest.CreateOfferRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	createRequest, err := newDomainCreateOffer(request)
	if err != nil {
		return fmt.Errorf("newDomainCreateOffer: %w", err)
	}

	created, err := s.offerService.Create(ctx, caller, createRequest)
	if err != nil {
		return fmt.Errorf("offerService.Create: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTOffer(created))

	return nil
}

func (s OfferServer) getV1Offers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	filter, err := parseOfferFilter(caller, r.URL.Query())
	if err != nil {
		return fmt.Errorf("parseOfferFilter: %w", err)
	}

	offers, err := s.offerService.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("offerService.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOfferList(offers))

	return nil
}

func (s OfferServer) getV1Offer(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	offerID, err := parseOfferID(r.PathValue("id"))
	if err != nil {
		return err
	}

	found, err := s.offerService.Get(ctx, caller, offerID)
	if err != nil {
		return fmt.Errorf("offerService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffer(found))

	return nil
}

func (s OfferServer) putV1OfferAccept(w http.ResponseWriter, r *http.Request) error {
	return s.resolve(w, r, "offerService.Accept", s.offerService.Accept)
}

func (s OfferServer) putV1OfferDecline(w http.ResponseWriter, r *http.Request) error {
	return s.resolve(w, r, "offerService.Decline", s.offerService.Decline)
}

func (s OfferServer) putV1OfferCancel(w http.ResponseWriter, r *http.Request) error {
	return s.resolve(w, r, "offerService.Cancel", s.offerService.Cancel)
}

func (s OfferServer) resolve(w http.ResponseWriter, r *http.Request, op string, fn resolveFunc) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	offerID, err := parseOfferID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request rest.ResolveOfferRequest

	// Тело необязательно.
	if err := req.ReadOptional(r, &request); err != nil {
		return fmt.Errorf("req.ReadOptional: %w", err)
	}

	resolved, err := fn(ctx, caller, offerID, request.ResponseMessage)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOffer(resolved))

	return nil
}
