package request

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

func (s *DefaultStore) SetActive(ctx context.Context, requestID, actorID string, active bool) (*domain.DishRequest, error) {
	request, err := s.ownedRequest(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	status := domain.RequestInactive
	if active {
		status = domain.RequestActive
	}
	if request.Status == status {
		return request, nil
	}

	updated, err := s.requestRepo.UpdateRequestStatus(ctx, request.ID, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("update dish request status: %w", err)
	}
	s.logger.Info("dish request status changed", "request_id", updated.ID, "status", updated.Status)
	return updated, nil
}

// Delete removes the request after finalizing its pending offers. The request is
// deactivated first; an offer inserted after the invalidation sees the closed request on
// the ledger's post-insert check and is rejected there.
func (s *DefaultStore) Delete(ctx context.Context, requestID, actorID string) error {
	request, err := s.ownedRequest(ctx, requestID, actorID)
	if err != nil {
		return err
	}

	if request.IsActive() {
		if _, err := s.requestRepo.UpdateRequestStatus(ctx, request.ID, domain.RequestInactive, s.now()); err != nil {
			return fmt.Errorf("deactivate dish request before delete: %w", err)
		}
	}

	if s.offers != nil {
		invalidated, err := s.offers.InvalidatePendingOffers(ctx, request.ID, actorID)
		if err != nil {
			return fmt.Errorf("invalidate pending offers: %w", err)
		}
		if invalidated > 0 {
			s.logger.Info("pending offers rejected for deleted request", "request_id", request.ID, "count", invalidated)
		}
	}

	if err := s.requestRepo.DeleteRequest(ctx, request.ID); err != nil {
		return fmt.Errorf("delete dish request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRequestDeleted()
	}
	s.logger.Info("dish request deleted", "request_id", request.ID, "customer_id", actorID)
	return nil
}

func (s *DefaultStore) ownedRequest(ctx context.Context, requestID, actorID string) (*domain.DishRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, domain.Validationf("request id is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.Validationf("actor id is required")
	}
	request, err := s.requestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.OwnedBy(actorID) {
		return nil, domain.NewError(domain.CodePermissionDenied, "you can only modify your own dish requests")
	}
	return request, nil
}
