package request

import (
	"context"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

func (s *DefaultStore) Get(ctx context.Context, requestID string) (*domain.DishRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, domain.Validationf("request id is required")
	}
	return s.requestRepo.GetRequestByID(ctx, requestID)
}

func (s *DefaultStore) ListActive(ctx context.Context) ([]*domain.DishRequest, error) {
	return s.requestRepo.ListRequestsByStatus(ctx, domain.RequestActive)
}

func (s *DefaultStore) ListByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.Validationf("customer id is required")
	}
	return s.requestRepo.ListRequestsByCustomer(ctx, customerID)
}
