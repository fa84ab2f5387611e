package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodePermissionDenied:
		return http.StatusForbidden
	case domain.CodeConflict, domain.CodeInvalidState, domain.CodeStaleState:
		return http.StatusConflict
	case domain.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"code","error"}. Errors without a domain code are logged and
// reported as INTERNAL_ERROR without their message.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	code := domain.CodeOf(err)
	if code == "" {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:  "INTERNAL_ERROR",
			Error: "internal error",
		})
		return
	}

	body := response.ErrorResponse{Code: string(code), Error: err.Error()}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body.Offer = response.FromOffer(conflict.Existing)
	}
	c.JSON(statusFor(code), body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Code:  string(domain.CodeValidation),
		Error: msg,
	})
}
