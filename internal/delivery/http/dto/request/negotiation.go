package request

type StartNegotiationRequest struct {
	PickupLocation string `json:"pickup_location"`
}

type AnswerRequest struct {
	Answer *bool `json:"answer" binding:"required"`
}

// CounterPriceRequest keeps the price as typed; parsing belongs to the wizard.
type CounterPriceRequest struct {
	Price string `json:"price"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}
