package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	requestdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/request"
)

// Store owns the lifecycle of customer dish requests.
type Store interface {
	Create(ctx context.Context, customerID string, input *requestdto.CreateRequestInput) (*domain.DishRequest, error)
	Get(ctx context.Context, requestID string) (*domain.DishRequest, error)
	SetActive(ctx context.Context, requestID, actorID string, active bool) (*domain.DishRequest, error)
	Delete(ctx context.Context, requestID, actorID string) error
	ListActive(ctx context.Context) ([]*domain.DishRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error)
}

// PendingOfferInvalidator finalizes the pending offers of a request that is going away.
type PendingOfferInvalidator interface {
	InvalidatePendingOffers(ctx context.Context, requestID, actorID string) (int, error)
}

type DefaultStore struct {
	requestRepo domain.DishRequestRepository
	offers      PendingOfferInvalidator
	metrics     *metrics.OfferMetrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewDefaultStore(
	requestRepo domain.DishRequestRepository,
	offers PendingOfferInvalidator,
	offerMetrics *metrics.OfferMetrics,
	logger *slog.Logger,
) *DefaultStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultStore{
		requestRepo: requestRepo,
		offers:      offers,
		metrics:     offerMetrics,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source; used by tests and by callers that need a fixed "today".
func (s *DefaultStore) WithClock(now func() time.Time) *DefaultStore {
	s.now = now
	return s
}
