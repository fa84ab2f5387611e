package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/offer"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/request"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	wizard   *Wizard
	ledger   *offer.DefaultLedger
	requests *memory.DishRequestRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	requests := memory.NewDishRequestRepository()
	ledger := offer.NewDefaultLedger(memory.NewOfferRepository(), requests, memory.NewOfferHistoryRepository(), nil, nil, nil, 0).
		WithClock(func() time.Time { return testNow })
	store := request.NewDefaultStore(requests, ledger, nil, nil)
	return &fixture{
		wizard:   NewWizard(store, ledger, nil, nil),
		ledger:   ledger,
		requests: requests,
	}
}

func (f *fixture) seedRequest(t *testing.T, id string, fulfillment domain.Fulfillment) {
	t.Helper()
	err := f.requests.CreateRequest(context.Background(), &domain.DishRequest{
		ID:             id,
		CustomerID:     "customer-1",
		DishName:       "Egusi soup",
		SuggestedPrice: 20,
		Servings:       4,
		RequestedTime:  "19:00",
		RequestedDate:  "2026-03-12",
		Fulfillment:    fulfillment,
		Status:         domain.RequestActive,
		CreatedAt:      testNow,
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

func (f *fixture) offerCount(t *testing.T, requestID string) int {
	t.Helper()
	offers, err := f.ledger.ListByRequest(context.Background(), requestID)
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	return len(offers)
}

func (f *fixture) start(t *testing.T, sellerID, requestID string) *Session {
	t.Helper()
	session, err := f.wizard.Start(context.Background(), StartInput{SellerID: sellerID, RequestID: requestID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Step != StepTimeCheck {
		t.Fatalf("initial step = %s, want %s", session.Step, StepTimeCheck)
	}
	return session
}

func (f *fixture) answer(t *testing.T, session *Session, yes bool) View {
	t.Helper()
	view, err := f.wizard.Answer(context.Background(), session, yes)
	if err != nil {
		t.Fatalf("answer at %s: %v", session.Step, err)
	}
	return view
}

func TestWizard_AcceptSuggestedPrice(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.Pickup())

	session := f.start(t, "seller-a", "req-1")
	if view := f.answer(t, session, true); view.Step != StepPriceApproval {
		t.Fatalf("pickup should skip delivery check, got step %s", view.Step)
	}
	view := f.answer(t, session, true)

	if view.Outcome != OutcomeSubmitted || view.Offer == nil {
		t.Fatalf("expected submitted offer, got %+v", view)
	}
	if view.Offer.Price != 20 || view.Offer.Status != domain.OfferPending {
		t.Fatalf("unexpected offer: %+v", view.Offer)
	}
	if want := view.Offer.SubmittedAt.Add(30 * time.Minute); !view.Offer.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", view.Offer.ExpiresAt, want)
	}

	_, err := f.wizard.Start(context.Background(), StartInput{SellerID: "seller-a", RequestID: "req-1"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.Existing.ID != view.Offer.ID {
		t.Fatalf("expected conflict with existing offer, got %v", err)
	}
	if conflict.Existing.Status != domain.OfferPending {
		t.Fatalf("existing status = %s, want pending", conflict.Existing.Status)
	}
}

func TestWizard_CounterPrice(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.Pickup())

	session := f.start(t, "seller-b", "req-1")
	f.answer(t, session, true)
	if view := f.answer(t, session, false); view.Step != StepCounterPriceEntry {
		t.Fatalf("step = %s, want %s", view.Step, StepCounterPriceEntry)
	}

	for _, raw := range []string{"abc", "", "0", "-5", "NaN", "Inf"} {
		view, err := f.wizard.EnterCounterPrice(context.Background(), session, raw)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("price %q: expected ErrValidation, got %v", raw, err)
		}
		if view.Step != StepCounterPriceEntry || view.Outcome != OutcomeInProgress {
			t.Fatalf("price %q: session moved to %+v", raw, view)
		}
	}
	if n := f.offerCount(t, "req-1"); n != 0 {
		t.Fatalf("offers = %d, want 0", n)
	}

	view, err := f.wizard.EnterCounterPrice(context.Background(), session, " 25 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Outcome != OutcomeSubmitted || view.Offer.Price != 25 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if n := f.offerCount(t, "req-1"); n != 1 {
		t.Fatalf("offers = %d, want 1", n)
	}
}

func TestWizard_Declines(t *testing.T) {
	t.Run("time check no", func(t *testing.T) {
		f := newFixture(t)
		f.seedRequest(t, "req-1", domain.DeliveryTo("5 Marina Rd"))

		session := f.start(t, "seller-a", "req-1")
		view := f.answer(t, session, false)
		if view.Outcome != OutcomeDeclined || view.Offer != nil {
			t.Fatalf("expected declined without offer, got %+v", view)
		}
		if n := f.offerCount(t, "req-1"); n != 0 {
			t.Fatalf("offers = %d, want 0", n)
		}
	})

	t.Run("delivery check no", func(t *testing.T) {
		f := newFixture(t)
		f.seedRequest(t, "req-1", domain.DeliveryTo("5 Marina Rd"))

		session := f.start(t, "seller-a", "req-1")
		if view := f.answer(t, session, true); view.Step != StepDeliveryCheck {
			t.Fatalf("step = %s, want %s", view.Step, StepDeliveryCheck)
		}
		view := f.answer(t, session, false)
		if view.Outcome != OutcomeDeclined {
			t.Fatalf("outcome = %s, want declined", view.Outcome)
		}
		if n := f.offerCount(t, "req-1"); n != 0 {
			t.Fatalf("offers = %d, want 0", n)
		}
	})

	t.Run("answers after decline are refused", func(t *testing.T) {
		f := newFixture(t)
		f.seedRequest(t, "req-1", domain.Pickup())

		session := f.start(t, "seller-a", "req-1")
		f.answer(t, session, false)
		if _, err := f.wizard.Answer(context.Background(), session, true); !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestWizard_DeliveryPathSubmitsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.DeliveryTo("5 Marina Rd"))

	session := f.start(t, "seller-a", "req-1")
	f.answer(t, session, true)
	f.answer(t, session, true)
	view := f.answer(t, session, true)

	if view.Outcome != OutcomeSubmitted {
		t.Fatalf("outcome = %s, want submitted", view.Outcome)
	}
	if !view.Offer.Fulfillment.IsDelivery() || view.Offer.Fulfillment.Address != "5 Marina Rd" {
		t.Fatalf("fulfillment snapshot = %+v", view.Offer.Fulfillment)
	}
}

func TestWizard_StartPreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.Pickup())

	if _, err := f.wizard.Start(ctx, StartInput{SellerID: "customer-1", RequestID: "req-1"}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("own request: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.wizard.Start(ctx, StartInput{SellerID: "seller-a", RequestID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing request: expected ErrNotFound, got %v", err)
	}
	if _, err := f.wizard.Start(ctx, StartInput{SellerID: "", RequestID: "req-1"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing seller: expected ErrValidation, got %v", err)
	}

	if _, err := f.requests.UpdateRequestStatus(ctx, "req-1", domain.RequestInactive, testNow); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.wizard.Start(ctx, StartInput{SellerID: "seller-a", RequestID: "req-1"}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("inactive request: expected ErrInvalidState, got %v", err)
	}
}

func TestWizard_AbandonedSessionLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.Pickup())

	session := f.start(t, "seller-a", "req-1")
	f.answer(t, session, true)
	f.answer(t, session, false)

	// Dropping the session at counter price entry must not block a fresh start.
	again := f.start(t, "seller-a", "req-1")
	if again == session {
		t.Fatalf("expected a new session")
	}
	if n := f.offerCount(t, "req-1"); n != 0 {
		t.Fatalf("offers = %d, want 0", n)
	}
}

func TestWizard_CounterPriceOnlyAtCounterStep(t *testing.T) {
	f := newFixture(t)
	f.seedRequest(t, "req-1", domain.Pickup())

	session := f.start(t, "seller-a", "req-1")
	if _, err := f.wizard.EnterCounterPrice(context.Background(), session, "30"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
