package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultBatchSize = 100
)

var tracer = otel.Tracer("github.com/LavaJover/shvark-dish-request-service/internal/usecase/expiry")

type ExpiredOfferFinder interface {
	FindExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Offer, error)
}

type Transitioner interface {
	Transition(ctx context.Context, input *offerdto.TransitionInput) (*domain.Offer, error)
}

// Scheduler moves pending offers past their deadline to expired. Deadlines come only from
// the stored expires_at, so a restarted process picks up where the previous one stopped.
type Scheduler struct {
	finder    ExpiredOfferFinder
	ledger    Transitioner
	interval  time.Duration
	batchSize int
	metrics   *metrics.OfferMetrics
	logger    *slog.Logger
	now       func() time.Time

	mu           sync.Mutex
	nextDeadline time.Time
	wake         chan struct{}
}

func NewScheduler(
	finder ExpiredOfferFinder,
	ledger Transitioner,
	interval time.Duration,
	batchSize int,
	offerMetrics *metrics.OfferMetrics,
	logger *slog.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		finder:    finder,
		ledger:    ledger,
		interval:  interval,
		batchSize: batchSize,
		metrics:   offerMetrics,
		logger:    logger,
		now:       time.Now,
		wake:      make(chan struct{}, 1),
	}
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Register wakes the loop early when offer's deadline comes before the next tick.
func (s *Scheduler) Register(offer *domain.Offer) {
	if offer == nil || !offer.IsPending() {
		return
	}
	s.mu.Lock()
	earlier := s.nextDeadline.IsZero() || offer.ExpiresAt.Before(s.nextDeadline)
	if earlier {
		s.nextDeadline = offer.ExpiresAt
	}
	s.mu.Unlock()

	if earlier {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("starting offer expiry scheduler", "interval", s.interval, "batch_size", s.batchSize)

	s.sweep(ctx)

	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping offer expiry scheduler")
			return
		case <-s.wake:
			timer.Reset(s.nextDelay())
		case <-timer.C:
			s.sweep(ctx)
			timer.Reset(s.nextDelay())
		}
	}
}

func (s *Scheduler) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.interval
	if !s.nextDeadline.IsZero() {
		until := s.nextDeadline.Sub(s.now())
		if until < 0 {
			until = 0
		}
		if until < delay {
			delay = until
		}
	}
	return delay
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := s.now()
	result, err := s.SweepOnce(ctx, now)
	if err != nil {
		s.logger.Error("offer expiry sweep failed", "error", err)
	}
	if result.Expired > 0 {
		s.logger.Info("expired overdue offers", "count", result.Expired, "skipped", result.Skipped)
	}

	s.mu.Lock()
	if !s.nextDeadline.IsZero() && !s.nextDeadline.After(now) {
		s.nextDeadline = time.Time{}
	}
	s.mu.Unlock()
}

type SweepResult struct {
	Expired int
	Skipped int
	Failed  int
}

// SweepOnce expires every offer that is pending with expires_at <= now. An offer finalized
// by someone else between the scan and the update is skipped, not reported.
func (s *Scheduler) SweepOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	ctx, span := tracer.Start(ctx, "ExpiryScheduler.Sweep")
	defer span.End()

	started := time.Now()
	var result SweepResult

	for {
		offers, err := s.finder.FindExpiredOffers(ctx, now, s.batchSize)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordSweepError()
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, fmt.Errorf("find expired offers: %w", err)
		}

		progressed := false
		for _, offer := range offers {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			switch s.expire(ctx, offer) {
			case expireDone:
				result.Expired++
				progressed = true
			case expireLost:
				result.Skipped++
			case expireFailed:
				result.Failed++
			}
		}

		// Only newly expired offers count: a lagging index can keep returning finalized ones.
		if len(offers) < s.batchSize || !progressed {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.expired", result.Expired),
		attribute.Int("sweep.skipped", result.Skipped),
		attribute.Int("sweep.failed", result.Failed),
	)
	if s.metrics != nil {
		s.metrics.RecordSweep(time.Since(started).Seconds(), result.Expired, result.Skipped)
	}
	return result, nil
}

type expireOutcome int

const (
	expireDone expireOutcome = iota
	expireLost
	expireFailed
)

func (s *Scheduler) expire(ctx context.Context, offer *domain.Offer) expireOutcome {
	_, err := s.ledger.Transition(ctx, &offerdto.TransitionInput{
		OfferID: offer.ID,
		From:    domain.OfferPending,
		To:      domain.OfferExpired,
		ActorID: domain.SystemExpiryActor,
		Reason:  domain.ReasonDeadlinePassed,
	})
	switch {
	case err == nil:
		return expireDone
	case errors.Is(err, domain.ErrStaleState), errors.Is(err, domain.ErrNotFound):
		s.logger.Debug("offer finalized before expiry", "offer_id", offer.ID)
		return expireLost
	default:
		if s.metrics != nil {
			s.metrics.RecordSweepError()
		}
		s.logger.Error("failed to expire offer", "offer_id", offer.ID, "error", err)
		return expireFailed
	}
}
