package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
	"github.com/gin-gonic/gin"
)

type QualificationWizard interface {
	Start(ctx context.Context, input wizard.StartInput) (*wizard.Session, error)
	Answer(ctx context.Context, session *wizard.Session, yes bool) (wizard.View, error)
	EnterCounterPrice(ctx context.Context, session *wizard.Session, raw string) (wizard.View, error)
}

// NegotiationHandler drives wizard sessions over HTTP. Sessions live in the registry
// between calls and are dropped once they reach an outcome.
type NegotiationHandler struct {
	wizard   QualificationWizard
	sessions *wizard.Registry
	logger   *slog.Logger
}

func NewNegotiationHandler(wz QualificationWizard, sessions *wizard.Registry, logger *slog.Logger) *NegotiationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NegotiationHandler{wizard: wz, sessions: sessions, logger: logger}
}

// Start opens a new session, replacing any unfinished one for the same request.
func (h *NegotiationHandler) Start(c *gin.Context) {
	var payload request.StartNegotiationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			badRequest(c, "invalid negotiation payload")
			return
		}
	}

	session, err := h.wizard.Start(c.Request.Context(), wizard.StartInput{
		SellerID:       middleware.ActorID(c),
		RequestID:      c.Param("id"),
		PickupLocation: payload.PickupLocation,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.sessions.Put(session)
	c.JSON(http.StatusCreated, response.FromView(session.View()))
}

func (h *NegotiationHandler) Answer(c *gin.Context) {
	var payload request.AnswerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "answer must be true or false")
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.wizard.Answer(c.Request.Context(), session, *payload.Answer)
	h.respond(c, session, view, err)
}

func (h *NegotiationHandler) EnterPrice(c *gin.Context) {
	var payload request.CounterPriceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "price must be sent as a string")
		return
	}
	session, ok := h.session(c)
	if !ok {
		return
	}

	view, err := h.wizard.EnterCounterPrice(c.Request.Context(), session, payload.Price)
	h.respond(c, session, view, err)
}

func (h *NegotiationHandler) Abandon(c *gin.Context) {
	if !h.sessions.Delete(middleware.ActorID(c), c.Param("id")) {
		writeError(c, h.logger, domain.NewError(domain.CodeNotFound, "no negotiation in progress"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NegotiationHandler) session(c *gin.Context) (*wizard.Session, bool) {
	session, ok := h.sessions.Get(middleware.ActorID(c), c.Param("id"))
	if !ok {
		writeError(c, h.logger, domain.NewError(domain.CodeNotFound, "no negotiation in progress"))
		return nil, false
	}
	return session, true
}

func (h *NegotiationHandler) respond(c *gin.Context, session *wizard.Session, view wizard.View, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if view.Outcome != wizard.OutcomeInProgress {
		h.sessions.Delete(session.SellerID, session.RequestID)
	}
	c.JSON(http.StatusOK, response.FromView(view))
}
