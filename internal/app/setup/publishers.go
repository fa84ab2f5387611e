package setup

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

// fanoutPublisher hands every event to each publisher and joins their errors.
type fanoutPublisher []domain.OfferEventPublisher

func (f fanoutPublisher) PublishOfferEvent(ctx context.Context, event domain.OfferStatusEvent, offer *domain.Offer) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishOfferEvent(ctx, event, offer); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
