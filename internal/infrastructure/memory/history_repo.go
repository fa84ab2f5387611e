package memory

import (
	"context"
	"sync"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

type OfferHistoryRepository struct {
	mu     sync.RWMutex
	events map[string][]domain.OfferStatusEvent
}

func NewOfferHistoryRepository() *OfferHistoryRepository {
	return &OfferHistoryRepository{events: make(map[string][]domain.OfferStatusEvent)}
}

func (r *OfferHistoryRepository) AppendOfferEvent(ctx context.Context, event *domain.OfferStatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.OfferID] = append(r.events[event.OfferID], *event)
	return nil
}

func (r *OfferHistoryRepository) ListOfferEvents(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[offerID]
	result := make([]*domain.OfferStatusEvent, 0, len(events))
	for i := range events {
		event := events[i]
		result = append(result, &event)
	}
	return result, nil
}
