package offer

import (
	"context"
	"errors"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
)

// Transition is the only way an offer's status changes. It is a compare-and-swap:
// when the stored status is no longer input.From the call fails with ErrStaleState and
// nothing is written.
func (l *DefaultLedger) Transition(ctx context.Context, input *offerdto.TransitionInput) (*domain.Offer, error) {
	if input == nil || strings.TrimSpace(input.OfferID) == "" {
		return nil, domain.Validationf("offer id is required")
	}
	if !domain.CanTransition(input.From, input.To) {
		return nil, domain.NewError(domain.CodeInvalidState, "offer cannot move from %q to %q", input.From, input.To)
	}

	now := l.now()
	offer, err := l.offerRepo.TransitionOfferStatus(ctx, domain.StatusChange{
		OfferID: input.OfferID,
		From:    input.From,
		To:      input.To,
		At:      now,
	})
	if err != nil {
		return nil, err
	}

	l.recordOfferFinalizedMetrics(offer, input.Reason)
	l.afterStatusChange(ctx, offer, domain.OfferStatusEvent{
		OfferID:    offer.ID,
		RequestID:  offer.RequestID,
		FromStatus: input.From,
		ToStatus:   input.To,
		ActorID:    input.ActorID,
		Reason:     input.Reason,
		OccurredAt: now,
	})
	return offer, nil
}

// InvalidatePendingOffers rejects every pending offer of requestID. Offers finalized
// concurrently are skipped.
func (l *DefaultLedger) InvalidatePendingOffers(ctx context.Context, requestID, actorID string) (int, error) {
	offers, err := l.offerRepo.ListOffersByRequest(ctx, requestID)
	if err != nil {
		return 0, err
	}

	rejected := 0
	for _, offer := range offers {
		if !offer.IsPending() {
			continue
		}
		_, err := l.Transition(ctx, &offerdto.TransitionInput{
			OfferID: offer.ID,
			From:    domain.OfferPending,
			To:      domain.OfferRejected,
			ActorID: actorID,
			Reason:  domain.ReasonRequestDeleted,
		})
		switch {
		case err == nil:
			rejected++
		case errors.Is(err, domain.ErrStaleState):
			continue
		default:
			return rejected, err
		}
	}
	return rejected, nil
}

// afterStatusChange records history and notifies downstream consumers. Failures here
// never undo the status change; they are logged.
func (l *DefaultLedger) afterStatusChange(ctx context.Context, offer *domain.Offer, event domain.OfferStatusEvent) {
	if l.historyRepo != nil {
		if err := l.historyRepo.AppendOfferEvent(ctx, &event); err != nil {
			l.logger.Error("failed to append offer status event",
				"offer_id", offer.ID, "to_status", event.ToStatus, "error", err)
		}
	}
	if l.publisher != nil {
		if err := l.publisher.PublishOfferEvent(ctx, event, offer); err != nil {
			l.logger.Error("failed to publish offer event",
				"offer_id", offer.ID, "to_status", event.ToStatus, "error", err)
		}
	}
}
