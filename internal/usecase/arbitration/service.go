package arbitration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/LavaJover/shvark-dish-request-service/internal/usecase/arbitration")

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	}
	return "", domain.Validationf("decision must be %q or %q", DecisionApprove, DecisionReject)
}

// SiblingPolicy says what happens to the other pending offers of a request once one is approved.
type SiblingPolicy string

const (
	RejectSiblings SiblingPolicy = "reject_siblings"
	LeavePending   SiblingPolicy = "leave_pending"
)

func ParseSiblingPolicy(raw string) (SiblingPolicy, error) {
	switch p := SiblingPolicy(strings.TrimSpace(raw)); p {
	case RejectSiblings, LeavePending:
		return p, nil
	case "":
		return RejectSiblings, nil
	}
	return "", fmt.Errorf("unknown sibling policy %q", raw)
}

type OfferLedger interface {
	Get(ctx context.Context, offerID string) (*domain.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error)
	Transition(ctx context.Context, input *offerdto.TransitionInput) (*domain.Offer, error)
}

type RequestReader interface {
	GetRequestByID(ctx context.Context, requestID string) (*domain.DishRequest, error)
}

type Service struct {
	offers   OfferLedger
	requests RequestReader
	policy   SiblingPolicy
	metrics  *metrics.OfferMetrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(offers OfferLedger, requests RequestReader, policy SiblingPolicy, offerMetrics *metrics.OfferMetrics, logger *slog.Logger) *Service {
	if policy == "" {
		policy = RejectSiblings
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		offers:   offers,
		requests: requests,
		policy:   policy,
		metrics:  offerMetrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Policy() SiblingPolicy {
	return s.policy
}
