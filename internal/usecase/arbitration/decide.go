package arbitration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Decide records the customer's approve/reject on a pending offer. Only one of Decide and
// the expiry sweep can finalize an offer; the loser gets InvalidState here.
func (s *Service) Decide(ctx context.Context, offerID, customerID string, decision Decision) (*domain.Offer, error) {
	ctx, span := tracer.Start(ctx, "ArbitrationService.Decide")
	defer span.End()
	span.SetAttributes(
		attribute.String("offer.id", offerID),
		attribute.String("decision", string(decision)),
	)

	offer, err := s.decide(ctx, offerID, customerID, decision)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return offer, nil
}

func (s *Service) decide(ctx context.Context, offerID, customerID string, decision Decision) (*domain.Offer, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, domain.Validationf("offer id is required")
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.Validationf("customer id is required")
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, domain.Validationf("decision must be %q or %q", DecisionApprove, DecisionReject)
	}

	offer, err := s.offers.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.CustomerID != customerID {
		return nil, domain.NewError(domain.CodePermissionDenied, "only the request owner can decide on this offer")
	}
	if !offer.IsPending() {
		return nil, domain.NewError(domain.CodeInvalidState, "offer %s is already %s", offer.ID, offer.Status)
	}

	// The sweep may not have reached an overdue offer yet; the deadline still wins.
	if offer.Overdue(s.now()) {
		s.expireOverdue(ctx, offer)
		return nil, domain.NewError(domain.CodeInvalidState, "offer %s expired at %s", offer.ID, offer.ExpiresAt.Format(time.RFC3339))
	}

	if decision == DecisionReject {
		return s.finalize(ctx, offer, domain.OfferRejected, customerID, decision)
	}

	if _, err := s.requests.GetRequestByID(ctx, offer.RequestID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.rejectOrphan(ctx, offer)
		return nil, domain.NewError(domain.CodeInvalidState, "request %s no longer exists", offer.RequestID)
	}

	approved, err := s.finalize(ctx, offer, domain.OfferApproved, customerID, decision)
	if err != nil {
		return nil, err
	}

	if s.policy == RejectSiblings {
		s.rejectSiblings(ctx, approved, customerID)
	}
	return approved, nil
}

func (s *Service) finalize(ctx context.Context, offer *domain.Offer, to domain.OfferStatus, customerID string, decision Decision) (*domain.Offer, error) {
	updated, err := s.offers.Transition(ctx, &offerdto.TransitionInput{
		OfferID: offer.ID,
		From:    domain.OfferPending,
		To:      to,
		ActorID: customerID,
		Reason:  domain.ReasonDecided,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			if s.metrics != nil {
				s.metrics.RecordArbitrationStale(string(decision))
			}
			return nil, domain.WrapError(domain.CodeInvalidState, "offer was finalized concurrently", err)
		}
		return nil, err
	}

	s.logger.Info("offer decided",
		"offer_id", updated.ID,
		"request_id", updated.RequestID,
		"customer_id", customerID,
		"status", updated.Status,
	)
	return updated, nil
}

// rejectSiblings finalizes the other pending offers of the approved offer's request.
// Each goes through the same compare-and-swap, so an offer the sweep already expired stays expired.
func (s *Service) rejectSiblings(ctx context.Context, approved *domain.Offer, customerID string) {
	siblings, err := s.offers.ListByRequest(ctx, approved.RequestID)
	if err != nil {
		s.logger.Error("failed to list sibling offers", "request_id", approved.RequestID, "error", err)
		return
	}

	rejected := 0
	for _, sibling := range siblings {
		if sibling.ID == approved.ID || !sibling.IsPending() {
			continue
		}
		_, err := s.offers.Transition(ctx, &offerdto.TransitionInput{
			OfferID: sibling.ID,
			From:    domain.OfferPending,
			To:      domain.OfferRejected,
			ActorID: customerID,
			Reason:  domain.ReasonSiblingApproved,
		})
		switch {
		case err == nil:
			rejected++
		case errors.Is(err, domain.ErrStaleState):
		default:
			s.logger.Error("failed to reject sibling offer", "offer_id", sibling.ID, "error", err)
		}
	}
	if rejected > 0 {
		s.logger.Info("sibling offers rejected", "request_id", approved.RequestID, "count", rejected)
	}
}

func (s *Service) expireOverdue(ctx context.Context, offer *domain.Offer) {
	_, err := s.offers.Transition(ctx, &offerdto.TransitionInput{
		OfferID: offer.ID,
		From:    domain.OfferPending,
		To:      domain.OfferExpired,
		ActorID: domain.SystemExpiryActor,
		Reason:  domain.ReasonDeadlinePassed,
	})
	if err != nil && !errors.Is(err, domain.ErrStaleState) {
		s.logger.Error("failed to expire overdue offer", "offer_id", offer.ID, "error", err)
	}
}

func (s *Service) rejectOrphan(ctx context.Context, offer *domain.Offer) {
	_, err := s.offers.Transition(ctx, &offerdto.TransitionInput{
		OfferID: offer.ID,
		From:    domain.OfferPending,
		To:      domain.OfferRejected,
		ActorID: offer.CustomerID,
		Reason:  domain.ReasonRequestDeleted,
	})
	if err != nil && !errors.Is(err, domain.ErrStaleState) {
		s.logger.Error("failed to reject offer of deleted request", "offer_id", offer.ID, "error", err)
	}
}
