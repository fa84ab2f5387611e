package offer

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/LavaJover/shvark-dish-request-service/internal/usecase/offer")

// Ledger owns offers keyed by (request, seller) and every change of their status.
type Ledger interface {
	Submit(ctx context.Context, input *offerdto.SubmitOfferInput) (*domain.Offer, error)
	Get(ctx context.Context, offerID string) (*domain.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error)
	ListBySellerAndRequest(ctx context.Context, sellerID, requestID string) (*domain.Offer, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error)
	History(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error)
	Transition(ctx context.Context, input *offerdto.TransitionInput) (*domain.Offer, error)
	InvalidatePendingOffers(ctx context.Context, requestID, actorID string) (int, error)
}

// ExpiryRegistrar is told about every new pending offer so it can wake up for its deadline.
type ExpiryRegistrar interface {
	Register(offer *domain.Offer)
}

type DefaultLedger struct {
	offerRepo   domain.OfferRepository
	requestRepo domain.DishRequestRepository
	historyRepo domain.OfferHistoryRepository
	publisher   domain.OfferEventPublisher
	registrar   ExpiryRegistrar
	metrics     *metrics.OfferMetrics
	logger      *slog.Logger
	ttl         time.Duration
	now         func() time.Time
}

func NewDefaultLedger(
	offerRepo domain.OfferRepository,
	requestRepo domain.DishRequestRepository,
	historyRepo domain.OfferHistoryRepository,
	publisher domain.OfferEventPublisher,
	offerMetrics *metrics.OfferMetrics,
	logger *slog.Logger,
	ttl time.Duration,
) *DefaultLedger {
	if ttl <= 0 {
		ttl = domain.DefaultOfferTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultLedger{
		offerRepo:   offerRepo,
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		publisher:   publisher,
		metrics:     offerMetrics,
		logger:      logger,
		ttl:         ttl,
		now:         time.Now,
	}
}

// AttachScheduler sets the registrar notified on submission. The scheduler itself needs
// the ledger, so it is attached after both are built.
func (l *DefaultLedger) AttachScheduler(registrar ExpiryRegistrar) {
	l.registrar = registrar
}

func (l *DefaultLedger) WithClock(now func() time.Time) *DefaultLedger {
	l.now = now
	return l
}

func (l *DefaultLedger) TTL() time.Duration {
	return l.ttl
}
