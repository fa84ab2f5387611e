package wizard

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	offerdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/offer"
)

type RequestReader interface {
	Get(ctx context.Context, requestID string) (*domain.DishRequest, error)
}

type OfferLedger interface {
	Submit(ctx context.Context, input *offerdto.SubmitOfferInput) (*domain.Offer, error)
	ListBySellerAndRequest(ctx context.Context, sellerID, requestID string) (*domain.Offer, error)
}

type StartInput struct {
	SellerID       string
	RequestID      string
	PickupLocation string
}

type Wizard struct {
	requests RequestReader
	offers   OfferLedger
	metrics  *metrics.OfferMetrics
	logger   *slog.Logger
}

func NewWizard(requests RequestReader, offers OfferLedger, offerMetrics *metrics.OfferMetrics, logger *slog.Logger) *Wizard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wizard{
		requests: requests,
		offers:   offers,
		metrics:  offerMetrics,
		logger:   logger,
	}
}

// Start opens a session at TimeCheck. A seller that already holds a pending offer on the
// request is refused with *domain.ConflictError carrying that offer.
func (w *Wizard) Start(ctx context.Context, input StartInput) (*Session, error) {
	sellerID := strings.TrimSpace(input.SellerID)
	if sellerID == "" {
		return nil, domain.Validationf("seller id is required")
	}

	request, err := w.requests.Get(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if request.OwnedBy(sellerID) {
		return nil, domain.NewError(domain.CodePermissionDenied, "you cannot make an offer on your own request")
	}
	if !request.IsActive() {
		return nil, domain.NewError(domain.CodeInvalidState, "request %s is not accepting offers", request.ID)
	}

	latest, err := w.offers.ListBySellerAndRequest(ctx, sellerID, request.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsPending() {
		w.recordOutcome("refused_pending")
		return nil, &domain.ConflictError{Existing: latest}
	}

	return newSession(sellerID, strings.TrimSpace(input.PickupLocation), request), nil
}

// Answer applies a yes/no answer to the current question.
func (w *Wizard) Answer(ctx context.Context, session *Session, yes bool) (View, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Done() {
		return session.view(), domain.NewError(domain.CodeInvalidState, "negotiation is already %s", session.Outcome)
	}

	switch session.Step {
	case StepTimeCheck:
		session.Answers.CanPrepareInTime = boolPtr(yes)
		if !yes {
			w.decline(session, "declined_time")
			break
		}
		if session.request.Fulfillment.IsDelivery() {
			session.Step = StepDeliveryCheck
		} else {
			session.Step = StepPriceApproval
		}

	case StepDeliveryCheck:
		session.Answers.CanDeliver = boolPtr(yes)
		if !yes {
			w.decline(session, "declined_delivery")
			break
		}
		session.Step = StepPriceApproval

	case StepPriceApproval:
		session.Answers.AcceptsSuggested = boolPtr(yes)
		if !yes {
			session.Step = StepCounterPriceEntry
			break
		}
		if err := w.submit(ctx, session, session.request.SuggestedPrice, false); err != nil {
			return session.view(), err
		}

	case StepCounterPriceEntry:
		return session.view(), domain.NewError(domain.CodeInvalidState, "a counter price is expected, not a yes/no answer")
	}

	return session.view(), nil
}

// EnterCounterPrice submits the offer at the seller's own price. An unparseable or
// non-positive price leaves the session where it is.
func (w *Wizard) EnterCounterPrice(ctx context.Context, session *Session, raw string) (View, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Done() {
		return session.view(), domain.NewError(domain.CodeInvalidState, "negotiation is already %s", session.Outcome)
	}
	if session.Step != StepCounterPriceEntry {
		return session.view(), domain.NewError(domain.CodeInvalidState, "counter price is not expected at step %s", session.Step)
	}

	price, err := ParsePrice(raw)
	if err != nil {
		return session.view(), err
	}
	if err := w.submit(ctx, session, price, true); err != nil {
		return session.view(), err
	}
	session.Answers.CounterPrice = price
	return session.view(), nil
}

// ParsePrice accepts a decimal number greater than zero.
func ParsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, domain.Validationf("price %q is not a number", raw)
	}
	if price <= 0 {
		return 0, domain.Validationf("price must be greater than zero")
	}
	return price, nil
}

func (w *Wizard) submit(ctx context.Context, session *Session, price float64, counterPriced bool) error {
	offer, err := w.offers.Submit(ctx, &offerdto.SubmitOfferInput{
		RequestID:      session.RequestID,
		SellerID:       session.SellerID,
		CustomerID:     session.request.CustomerID,
		Price:          price,
		Fulfillment:    session.request.Fulfillment,
		PickupLocation: session.PickupLocation,
		CounterPriced:  counterPriced,
	})
	if err != nil {
		return err
	}

	session.Offer = offer
	session.Outcome = OutcomeSubmitted
	w.recordOutcome("submitted")
	return nil
}

func (w *Wizard) decline(session *Session, outcome string) {
	session.Outcome = OutcomeDeclined
	w.recordOutcome(outcome)
	w.logger.Debug("seller declined dish request",
		"request_id", session.RequestID,
		"seller_id", session.SellerID,
		"step", session.Step,
	)
}

func (w *Wizard) recordOutcome(outcome string) {
	if w.metrics != nil {
		w.metrics.RecordWizardOutcome(outcome)
	}
}
