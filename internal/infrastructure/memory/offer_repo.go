package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

// OfferRepository keeps offers in a map. One mutex serializes writers, which gives the
// same guarantees the SQL partial unique indexes give: one pending offer per
// (request, seller) and one approved offer per request.
type OfferRepository struct {
	mu     sync.RWMutex
	offers map[string]domain.Offer
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{offers: make(map[string]domain.Offer)}
}

func (r *OfferRepository) CreateOffer(ctx context.Context, offer *domain.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.offers {
		if existing.RequestID == offer.RequestID && existing.SellerID == offer.SellerID && existing.IsPending() {
			existing := existing
			return &domain.ConflictError{Existing: &existing}
		}
	}
	r.offers[offer.ID] = *offer
	return nil
}

func (r *OfferRepository) GetOfferByID(ctx context.Context, offerID string) (*domain.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	offer, ok := r.offers[offerID]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "offer %s not found", offerID)
	}
	return &offer, nil
}

func (r *OfferRepository) ListOffersByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error) {
	return r.list(func(o *domain.Offer) bool { return o.RequestID == requestID }), nil
}

func (r *OfferRepository) ListOffersByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error) {
	return r.list(func(o *domain.Offer) bool { return o.CustomerID == customerID }), nil
}

func (r *OfferRepository) ListOffersBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error) {
	return r.list(func(o *domain.Offer) bool { return o.SellerID == sellerID }), nil
}

func (r *OfferRepository) FindLatestOffer(ctx context.Context, sellerID, requestID string) (*domain.Offer, error) {
	offers := r.list(func(o *domain.Offer) bool { return o.SellerID == sellerID && o.RequestID == requestID })
	if len(offers) == 0 {
		return nil, nil
	}
	for _, offer := range offers {
		if offer.IsPending() {
			return offer, nil
		}
	}
	return offers[0], nil
}

func (r *OfferRepository) TransitionOfferStatus(ctx context.Context, change domain.StatusChange) (*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offer, ok := r.offers[change.OfferID]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "offer %s not found", change.OfferID)
	}
	if offer.Status != change.From {
		return nil, domain.NewError(domain.CodeStaleState, "offer %s is %s, expected %s", offer.ID, offer.Status, change.From)
	}
	if change.To == domain.OfferApproved {
		for _, other := range r.offers {
			if other.RequestID == offer.RequestID && other.Status == domain.OfferApproved {
				return nil, domain.NewError(domain.CodeInvalidState, "request %s already has an approved offer", offer.RequestID)
			}
		}
	}

	offer.Status = change.To
	offer.UpdatedAt = change.At
	if change.To.Terminal() {
		at := change.At
		offer.DecidedAt = &at
	}
	r.offers[offer.ID] = offer
	return &offer, nil
}

func (r *OfferRepository) FindExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Offer, error) {
	offers := r.list(func(o *domain.Offer) bool { return o.Overdue(now) })
	sort.Slice(offers, func(i, j int) bool { return offers[i].ExpiresAt.Before(offers[j].ExpiresAt) })
	if limit > 0 && len(offers) > limit {
		offers = offers[:limit]
	}
	return offers, nil
}

// list returns matching offers, most recently submitted first.
func (r *OfferRepository) list(match func(*domain.Offer) bool) []*domain.Offer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Offer, 0)
	for _, offer := range r.offers {
		offer := offer
		if match(&offer) {
			result = append(result, &offer)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result
}
