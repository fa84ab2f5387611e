package mappers

import (
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
)

func ToDomainDishRequest(model *models.DishRequestModel) *domain.DishRequest {
	return &domain.DishRequest{
		ID:             model.ID,
		Code:           model.Code,
		CustomerID:     model.CustomerID,
		DishName:       model.DishName,
		Description:    model.Description,
		SuggestedPrice: model.SuggestedPrice,
		Servings:       model.Servings,
		RequestedTime:  model.RequestedTime,
		RequestedDate:  model.RequestedDate,
		ContactPhone:   model.ContactPhone,
		Fulfillment:    ToDomainFulfillment(model.FulfillmentKind, model.DeliveryAddress),
		Status:         domain.RequestStatus(model.Status),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMDishRequest(request *domain.DishRequest) *models.DishRequestModel {
	return &models.DishRequestModel{
		ID:              request.ID,
		Code:            request.Code,
		CustomerID:      request.CustomerID,
		DishName:        request.DishName,
		Description:     request.Description,
		SuggestedPrice:  request.SuggestedPrice,
		Servings:        request.Servings,
		RequestedTime:   request.RequestedTime,
		RequestedDate:   request.RequestedDate,
		ContactPhone:    request.ContactPhone,
		FulfillmentKind: string(request.Fulfillment.Kind),
		DeliveryAddress: request.Fulfillment.Address,
		Status:          string(request.Status),
		CreatedAt:       request.CreatedAt.UTC(),
		UpdatedAt:       request.UpdatedAt.UTC(),
	}
}

func ToDomainFulfillment(kind, address string) domain.Fulfillment {
	if domain.FulfillmentKind(kind) == domain.FulfillmentDelivery {
		return domain.DeliveryTo(address)
	}
	return domain.Pickup()
}
