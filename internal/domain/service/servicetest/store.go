// Package servicetest holds in-memory repositories for service tests.
// Conditional writes are guarded by a mutex so races resolve the same way
// the Postgres repositories resolve them.
package servicetest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/errcodes"
)

type Offers struct {
	mu     sync.Mutex
	offers map[uuid.UUID]entity.Offer
}

func NewOffers(offers ...entity.Offer) *Offers {
	s := &Offers{offers: make(map[uuid.UUID]entity.Offer)}
	for _, o := range offers {
		s.offers[o.ID] = o
	}
	return s
}

func (s *Offers) Create(_ context.Context, offer entity.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers[offer.ID] = offer
	return nil
}

func (s *Offers) GetByID(_ context.Context, id uuid.UUID) (entity.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[id]
	if !ok {
		return entity.Offer{}, domain.NewNotFoundError(errcodes.OfferNotFound, "offer not found")
	}
	return offer, nil
}

func (s *Offers) List(_ context.Context, filter value.OfferFilter) ([]entity.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.Offer
	for _, o := range s.offers {
		if filter.Role == value.OfferRoleSeller && o.SellerID != filter.UserID {
			continue
		}
		if filter.Role != value.OfferRoleSeller && o.BuyerID != filter.UserID {
			continue
		}
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Paging.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Paging.Offset:]
	if filter.Paging.Limit > 0 && len(out) > filter.Paging.Limit {
		out = out[:filter.Paging.Limit]
	}
	return out, nil
}

func (s *Offers) Transition(_ context.Context, req entity.TransitionRequest) (entity.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[req.OfferID]
	if !ok {
		return entity.Offer{}, domain.NewNotFoundError(errcodes.OfferNotFound, "offer not found")
	}

	if offer.Status != req.Transition.From {
		return entity.Offer{}, domain.NewConflictError(errcodes.OfferAlreadyResolved, "offer already resolved")
	}

	at := req.At
	offer.Status = req.Transition.To
	offer.ResolvedAt = &at
	offer.UpdatedAt = at
	if req.ResponseMessage != nil {
		offer.ResponseMessage = *req.ResponseMessage
	}

	s.offers[offer.ID] = offer
	return offer, nil
}

// SetStatus переводит оффер в статус в обход автомата, для подготовки сценариев.
func (s *Offers) SetStatus(id uuid.UUID, status entity.OfferStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer := s.offers[id]
	offer.Status = status
	s.offers[id] = offer
}

type Listings struct {
	mu       sync.Mutex
	listings map[uuid.UUID]entity.Listing
	// MarkSoldErr, если задана, возвращается из MarkSold.
	MarkSoldErr error
}

func NewListings(listings ...entity.Listing) *Listings {
	s := &Listings{listings: make(map[uuid.UUID]entity.Listing)}
	for _, l := range listings {
		s.listings[l.ID] = l
	}
	return s
}

func (s *Listings) GetByID(_ context.Context, id uuid.UUID) (entity.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[id]
	if !ok {
		return entity.Listing{}, domain.NewNotFoundError(errcodes.ListingNotFound, "listing not found")
	}
	return listing, nil
}

func (s *Listings) MarkSold(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.MarkSoldErr != nil {
		return false, s.MarkSoldErr
	}

	listing, ok := s.listings[id]
	if !ok || listing.Status != entity.ListingStatusActive {
		return false, nil
	}

	listing.Status = entity.ListingStatusSold
	s.listings[id] = listing
	return true, nil
}

func (s *Listings) Put(listing entity.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings[listing.ID] = listing
}

type Transactions struct {
	mu           sync.Mutex
	transactions []entity.Transaction
}

func NewTransactions(transactions ...entity.Transaction) *Transactions {
	return &Transactions{transactions: transactions}
}

func (s *Transactions) Record(_ context.Context, tx entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.SessionID == tx.SessionID || t.OfferID == tx.OfferID {
			return domain.NewError(errcodes.DuplicateSettlement, "transaction already recorded")
		}
	}

	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *Transactions) GetByOfferID(_ context.Context, offerID uuid.UUID) (entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.OfferID == offerID {
			return t, nil
		}
	}
	return entity.Transaction{}, domain.NewNotFoundError(errcodes.TransactionNotFound, "transaction not found")
}

func (s *Transactions) ListByUser(_ context.Context, userID uuid.UUID, paging value.Paging) ([]entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.Transaction
	for _, t := range s.transactions {
		if t.BuyerID == userID || t.SellerID == userID {
			out = append(out, t)
		}
	}

	if paging.Offset >= len(out) {
		return nil, nil
	}
	out = out[paging.Offset:]
	if paging.Limit > 0 && len(out) > paging.Limit {
		out = out[:paging.Limit]
	}
	return out, nil
}

func (s *Transactions) CountByOffer(offerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.transactions {
		if t.OfferID == offerID {
			n++
		}
	}
	return n
}
