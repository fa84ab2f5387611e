package mappers

import (
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
)

func ToDomainOffer(model *models.OfferModel) *domain.Offer {
	return &domain.Offer{
		ID:             model.ID,
		RequestID:      model.RequestID,
		SellerID:       model.SellerID,
		CustomerID:     model.CustomerID,
		Price:          model.Price,
		Fulfillment:    ToDomainFulfillment(model.FulfillmentKind, model.DeliveryAddress),
		PickupLocation: model.PickupLocation,
		DishName:       model.DishName,
		RequestedDate:  model.RequestedDate,
		RequestedTime:  model.RequestedTime,
		Servings:       model.Servings,
		Status:         domain.OfferStatus(model.Status),
		SubmittedAt:    model.SubmittedAt,
		ExpiresAt:      model.ExpiresAt,
		DecidedAt:      model.DecidedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMOffer(offer *domain.Offer) *models.OfferModel {
	model := &models.OfferModel{
		ID:              offer.ID,
		RequestID:       offer.RequestID,
		SellerID:        offer.SellerID,
		CustomerID:      offer.CustomerID,
		Price:           offer.Price,
		FulfillmentKind: string(offer.Fulfillment.Kind),
		DeliveryAddress: offer.Fulfillment.Address,
		PickupLocation:  offer.PickupLocation,
		DishName:        offer.DishName,
		RequestedDate:   offer.RequestedDate,
		RequestedTime:   offer.RequestedTime,
		Servings:        offer.Servings,
		Status:          string(offer.Status),
		SubmittedAt:     offer.SubmittedAt.UTC(),
		ExpiresAt:       offer.ExpiresAt.UTC(),
		UpdatedAt:       offer.UpdatedAt.UTC(),
	}
	if offer.DecidedAt != nil {
		decidedAt := offer.DecidedAt.UTC()
		model.DecidedAt = &decidedAt
	}
	return model
}

func ToDomainOfferStatusEvent(model *models.OfferStatusEventModel) *domain.OfferStatusEvent {
	return &domain.OfferStatusEvent{
		OfferID:    model.OfferID,
		RequestID:  model.RequestID,
		FromStatus: domain.OfferStatus(model.FromStatus),
		ToStatus:   domain.OfferStatus(model.ToStatus),
		ActorID:    model.ActorID,
		Reason:     domain.StatusReason(model.Reason),
		OccurredAt: model.OccurredAt,
	}
}

func ToGORMOfferStatusEvent(event *domain.OfferStatusEvent) *models.OfferStatusEventModel {
	return &models.OfferStatusEventModel{
		OfferID:    event.OfferID,
		RequestID:  event.RequestID,
		FromStatus: string(event.FromStatus),
		ToStatus:   string(event.ToStatus),
		ActorID:    event.ActorID,
		Reason:     string(event.Reason),
		OccurredAt: event.OccurredAt.UTC(),
	}
}
