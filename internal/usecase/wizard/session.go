package wizard

import (
	"sync"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

type Step string

const (
	StepTimeCheck         Step = "time_check"
	StepDeliveryCheck     Step = "delivery_check"
	StepPriceApproval     Step = "price_approval"
	StepCounterPriceEntry Step = "counter_price_entry"
)

// Question is what the seller is asked at each step.
func (s Step) Question() string {
	switch s {
	case StepTimeCheck:
		return "Can you prepare this dish by the requested time?"
	case StepDeliveryCheck:
		return "Can you deliver to the requested address?"
	case StepPriceApproval:
		return "Do you accept the customer's suggested price?"
	case StepCounterPriceEntry:
		return "Enter your price"
	}
	return ""
}

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeDeclined   Outcome = "declined"
	OutcomeSubmitted  Outcome = "submitted"
)

// Answers collected so far. A nil pointer means the question was not asked yet.
type Answers struct {
	CanPrepareInTime *bool
	CanDeliver       *bool
	AcceptsSuggested *bool
	CounterPrice     float64
}

// Session is one seller's walk through the qualification questions for one request.
// Nothing is persisted until the offer is submitted, so a session can be dropped at any step.
type Session struct {
	mu sync.Mutex

	SellerID       string
	RequestID      string
	PickupLocation string
	Step           Step
	Outcome        Outcome
	Answers        Answers
	Offer          *domain.Offer

	request *domain.DishRequest
}

func newSession(sellerID, pickupLocation string, request *domain.DishRequest) *Session {
	return &Session{
		SellerID:       sellerID,
		RequestID:      request.ID,
		PickupLocation: pickupLocation,
		Step:           StepTimeCheck,
		Outcome:        OutcomeInProgress,
		request:        request,
	}
}

// Request returns the request snapshot the session was started against.
func (s *Session) Request() *domain.DishRequest {
	return s.request
}

func (s *Session) Done() bool {
	return s.Outcome != OutcomeInProgress
}

// View is a copy of the session state safe to hand to other goroutines.
type View struct {
	SellerID  string
	RequestID string
	Step      Step
	Question  string
	Outcome   Outcome
	Offer     *domain.Offer
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	v := View{
		SellerID:  s.SellerID,
		RequestID: s.RequestID,
		Step:      s.Step,
		Outcome:   s.Outcome,
		Offer:     s.Offer,
	}
	if !s.Done() {
		v.Question = s.Step.Question()
	}
	return v
}

func boolPtr(v bool) *bool {
	return &v
}
