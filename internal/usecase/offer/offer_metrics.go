package offer

import (
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

func (l *DefaultLedger) recordOfferSubmittedMetrics(offer *domain.Offer, counterPriced bool) {
	if l.metrics == nil {
		return
	}
	l.metrics.RecordOfferSubmitted(string(offer.Fulfillment.Kind), counterPriced, offer.Price)
}

func (l *DefaultLedger) recordOfferFinalizedMetrics(offer *domain.Offer, reason domain.StatusReason) {
	if l.metrics == nil {
		return
	}
	sinceSubmit := -1.0
	if offer.DecidedAt != nil && !offer.SubmittedAt.IsZero() {
		sinceSubmit = offer.DecidedAt.Sub(offer.SubmittedAt).Seconds()
	}
	l.metrics.RecordOfferFinalized(string(offer.Status), string(reason), sinceSubmit)
}
