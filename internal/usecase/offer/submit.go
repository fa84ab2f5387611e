package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
	"github.com/jaevor/go-nanoid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Submit creates a pending offer. Uniqueness of the pending offer per (request, seller)
// is enforced by the repository insert itself, so a retried submission gets *ConflictError.
func (l *DefaultLedger) Submit(ctx context.Context, input *offerdto.SubmitOfferInput) (*domain.Offer, error) {
	ctx, span := tracer.Start(ctx, "OfferLedger.Submit")
	defer span.End()

	offer, err := l.submit(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("offer.id", offer.ID),
		attribute.String("offer.request_id", offer.RequestID),
		attribute.Float64("offer.price", offer.Price),
	)
	return offer, nil
}

func (l *DefaultLedger) submit(ctx context.Context, input *offerdto.SubmitOfferInput) (*domain.Offer, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	request, err := l.requestRepo.GetRequestByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if request.CustomerID != input.CustomerID {
		return nil, domain.Validationf("customer %s does not own request %s", input.CustomerID, request.ID)
	}
	if request.OwnedBy(input.SellerID) {
		return nil, domain.NewError(domain.CodePermissionDenied, "you cannot make an offer on your own request")
	}
	if !request.IsActive() {
		return nil, domain.NewError(domain.CodeInvalidState, "request %s is not accepting offers", request.ID)
	}
	if request.Fulfillment != input.Fulfillment {
		return nil, domain.Validationf("fulfillment does not match the request")
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("init offer id generator: %w", err)
	}

	now := l.now()
	pickupLocation := ""
	if !input.Fulfillment.IsDelivery() {
		pickupLocation = strings.TrimSpace(input.PickupLocation)
	}
	offer := &domain.Offer{
		ID:             idGenerator(),
		RequestID:      request.ID,
		SellerID:       input.SellerID,
		CustomerID:     request.CustomerID,
		Price:          input.Price,
		Fulfillment:    input.Fulfillment,
		PickupLocation: pickupLocation,
		DishName:       request.DishName,
		RequestedDate:  request.RequestedDate,
		RequestedTime:  request.RequestedTime,
		Servings:       request.Servings,
		Status:         domain.OfferPending,
		SubmittedAt:    now,
		ExpiresAt:      now.Add(l.ttl),
		UpdatedAt:      now,
	}

	if err := l.offerRepo.CreateOffer(ctx, offer); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) && l.metrics != nil {
			l.metrics.RecordSubmitConflict()
		}
		return nil, err
	}

	if l.registrar != nil {
		l.registrar.Register(offer)
	}

	l.recordOfferSubmittedMetrics(offer, input.CounterPriced)
	l.afterStatusChange(ctx, offer, domain.OfferStatusEvent{
		OfferID:    offer.ID,
		RequestID:  offer.RequestID,
		ToStatus:   domain.OfferPending,
		ActorID:    offer.SellerID,
		Reason:     domain.ReasonSubmitted,
		OccurredAt: now,
	})

	if err := l.withdrawIfRequestClosed(ctx, offer); err != nil {
		return nil, err
	}

	l.logger.Info("offer submitted",
		"offer_id", offer.ID,
		"request_id", offer.RequestID,
		"seller_id", offer.SellerID,
		"price", offer.Price,
		"expires_at", offer.ExpiresAt,
	)
	return offer, nil
}

// withdrawIfRequestClosed re-reads the request after the insert. Delete deactivates the
// request and then lists its pending offers once, so an insert that passed the active
// check before that list is rejected here instead of outliving the request.
func (l *DefaultLedger) withdrawIfRequestClosed(ctx context.Context, offer *domain.Offer) error {
	reason := domain.ReasonRequestClosed
	request, err := l.requestRepo.GetRequestByID(ctx, offer.RequestID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		reason = domain.ReasonRequestDeleted
	case err != nil:
		l.logger.Error("failed to re-check request after submit",
			"offer_id", offer.ID, "request_id", offer.RequestID, "error", err)
		return nil
	case request.IsActive():
		return nil
	}

	_, err = l.Transition(ctx, &offerdto.TransitionInput{
		OfferID: offer.ID,
		From:    domain.OfferPending,
		To:      domain.OfferRejected,
		ActorID: offer.CustomerID,
		Reason:  reason,
	})
	if err != nil && !errors.Is(err, domain.ErrStaleState) {
		l.logger.Error("failed to withdraw offer of closed request", "offer_id", offer.ID, "error", err)
	}
	l.logger.Info("offer withdrawn, request closed during submit",
		"offer_id", offer.ID, "request_id", offer.RequestID, "reason", reason)
	return domain.NewError(domain.CodeInvalidState, "request %s is not accepting offers", offer.RequestID)
}

func validateSubmitInput(input *offerdto.SubmitOfferInput) error {
	if input == nil {
		return domain.Validationf("offer is required")
	}
	if strings.TrimSpace(input.RequestID) == "" {
		return domain.Validationf("request id is required")
	}
	if strings.TrimSpace(input.SellerID) == "" {
		return domain.Validationf("seller id is required")
	}
	if strings.TrimSpace(input.CustomerID) == "" {
		return domain.Validationf("customer id is required")
	}
	if !(input.Price > 0) {
		return domain.Validationf("price must be greater than zero")
	}
	return input.Fulfillment.Validate()
}
