package request

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/request"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

// Alphabet for public request codes; no 0/O or 1/I so codes survive being read aloud.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

func (s *DefaultStore) Create(ctx context.Context, customerID string, input *requestdto.CreateRequestInput) (*domain.DishRequest, error) {
	if input == nil {
		return nil, domain.Validationf("request body is required")
	}
	fulfillment, err := buildFulfillment(input.Fulfillment, input.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	codeGenerator, err := nanoid.CustomASCII(codeAlphabet, 8)
	if err != nil {
		return nil, fmt.Errorf("init request code generator: %w", err)
	}

	now := s.now()
	request := &domain.DishRequest{
		ID:             uuid.New().String(),
		Code:           "DR-" + codeGenerator(),
		CustomerID:     strings.TrimSpace(customerID),
		DishName:       strings.TrimSpace(input.DishName),
		Description:    strings.TrimSpace(input.Description),
		SuggestedPrice: input.SuggestedPrice,
		Servings:       input.Servings,
		RequestedTime:  strings.TrimSpace(input.RequestedTime),
		RequestedDate:  strings.TrimSpace(input.RequestedDate),
		ContactPhone:   strings.TrimSpace(input.ContactPhone),
		Fulfillment:    fulfillment,
		Status:         domain.RequestActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := request.Validate(now); err != nil {
		return nil, err
	}

	if err := s.requestRepo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create dish request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRequestCreated(string(request.Fulfillment.Kind))
	}
	s.logger.Info("dish request created",
		"request_id", request.ID,
		"customer_id", request.CustomerID,
		"fulfillment", request.Fulfillment.Kind,
	)
	return request, nil
}

func buildFulfillment(kind, address string) (domain.Fulfillment, error) {
	switch domain.FulfillmentKind(strings.ToLower(strings.TrimSpace(kind))) {
	case domain.FulfillmentPickup, "":
		return domain.Pickup(), nil
	case domain.FulfillmentDelivery:
		return domain.DeliveryTo(address), nil
	default:
		return domain.Fulfillment{}, domain.Validationf("fulfillment must be %q or %q", domain.FulfillmentPickup, domain.FulfillmentDelivery)
	}
}
