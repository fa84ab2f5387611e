package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	requestdto "github.com/LavaJover/shvark-dish-request-service/internal/usecase/dto/request"
	"github.com/gin-gonic/gin"
)

type DishRequestStore interface {
	Create(ctx context.Context, customerID string, input *requestdto.CreateRequestInput) (*domain.DishRequest, error)
	Get(ctx context.Context, requestID string) (*domain.DishRequest, error)
	SetActive(ctx context.Context, requestID, actorID string, active bool) (*domain.DishRequest, error)
	Delete(ctx context.Context, requestID, actorID string) error
	ListActive(ctx context.Context) ([]*domain.DishRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error)
}

type RequestHandler struct {
	store  DishRequestStore
	logger *slog.Logger
}

func NewRequestHandler(store DishRequestStore, logger *slog.Logger) *RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestHandler{store: store, logger: logger}
}

func (h *RequestHandler) Create(c *gin.Context) {
	var payload request.CreateDishRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid dish request payload")
		return
	}

	created, err := h.store.Create(c.Request.Context(), middleware.ActorID(c), &requestdto.CreateRequestInput{
		DishName:        payload.DishName,
		Description:     payload.Description,
		SuggestedPrice:  payload.SuggestedPrice,
		Servings:        payload.Servings,
		RequestedTime:   payload.RequestedTime,
		RequestedDate:   payload.RequestedDate,
		ContactPhone:    payload.ContactPhone,
		Fulfillment:     payload.Fulfillment,
		DeliveryAddress: payload.DeliveryAddress,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromDishRequest(created))
}

func (h *RequestHandler) ListActive(c *gin.Context) {
	requests, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDishRequests(requests))
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	requests, err := h.store.ListByCustomer(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDishRequests(requests))
}

func (h *RequestHandler) Get(c *gin.Context) {
	found, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDishRequest(found))
}

func (h *RequestHandler) SetStatus(c *gin.Context) {
	var payload request.SetActiveRequest
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Active == nil {
		badRequest(c, "active flag is required")
		return
	}

	updated, err := h.store.SetActive(c.Request.Context(), c.Param("id"), middleware.ActorID(c), *payload.Active)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromDishRequest(updated))
}

func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
