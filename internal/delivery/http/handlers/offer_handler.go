package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/arbitration"
	"github.com/gin-gonic/gin"
)

type OfferReader interface {
	Get(ctx context.Context, offerID string) (*domain.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error)
	History(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error)
}

type RequestGetter interface {
	Get(ctx context.Context, requestID string) (*domain.DishRequest, error)
}

type Arbiter interface {
	Decide(ctx context.Context, offerID, customerID string, decision arbitration.Decision) (*domain.Offer, error)
}

type OfferHandler struct {
	offers   OfferReader
	requests RequestGetter
	arbiter  Arbiter
	logger   *slog.Logger
}

func NewOfferHandler(offers OfferReader, requests RequestGetter, arbiter Arbiter, logger *slog.Logger) *OfferHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OfferHandler{offers: offers, requests: requests, arbiter: arbiter, logger: logger}
}

// ListForRequest shows every offer made on a request to its owner.
func (h *OfferHandler) ListForRequest(c *gin.Context) {
	ctx := c.Request.Context()
	found, err := h.requests.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !found.OwnedBy(middleware.ActorID(c)) {
		writeError(c, h.logger, domain.NewError(domain.CodePermissionDenied, "only the request owner can list its offers"))
		return
	}

	offers, err := h.offers.ListByRequest(ctx, found.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOffers(offers))
}

func (h *OfferHandler) ListReceived(c *gin.Context) {
	offers, err := h.offers.ListByCustomer(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOffers(offers))
}

func (h *OfferHandler) ListMine(c *gin.Context) {
	offers, err := h.offers.ListBySeller(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOffers(offers))
}

func (h *OfferHandler) Get(c *gin.Context) {
	offer, ok := h.visibleOffer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.FromOffer(offer))
}

func (h *OfferHandler) History(c *gin.Context) {
	offer, ok := h.visibleOffer(c)
	if !ok {
		return
	}
	events, err := h.offers.History(c.Request.Context(), offer.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOfferEvents(events))
}

func (h *OfferHandler) Decide(c *gin.Context) {
	var payload request.DecisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "decision is required")
		return
	}
	decision, err := arbitration.ParseDecision(payload.Decision)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	offer, err := h.arbiter.Decide(c.Request.Context(), c.Param("id"), middleware.ActorID(c), decision)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.FromOffer(offer))
}

// visibleOffer loads the offer only for its seller or customer.
func (h *OfferHandler) visibleOffer(c *gin.Context) (*domain.Offer, bool) {
	offer, err := h.offers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	actorID := middleware.ActorID(c)
	if actorID != offer.CustomerID && actorID != offer.SellerID {
		writeError(c, h.logger, domain.NewError(domain.CodePermissionDenied, "offer %s is not yours", offer.ID))
		return nil, false
	}
	return offer, true
}
