package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/SscSPs/mycurrency/internal/middleware"
	"github.com/gin-gonic/gin"
)

const manualFailoverReason = "manual"

type providerHandler struct {
	providerService portssvc.ProviderRegistrySvcFacade
}

func newProviderHandler(ps portssvc.ProviderRegistrySvcFacade) *providerHandler {
	return &providerHandler{providerService: ps}
}

// registerProviderRoutes registers the admin routes of the provider registry.
func registerProviderRoutes(admin *gin.RouterGroup, providerService portssvc.ProviderRegistrySvcFacade) {
	h := newProviderHandler(providerService)

	providers := admin.Group("/providers")
	{
		providers.GET("", h.listProviders)
		providers.POST("/failover", h.failover)
	}
}

// listProviders godoc
// @Summary List rate providers
// @Description Returns the provider registry ordered by priority
// @Tags providers
// @Produce json
// @Success 200 {array} dto.ProviderResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list providers"
// @Security BearerAuth
// @Router /providers [get]
func (h *providerHandler) listProviders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ps, err := h.providerService.ListProviders(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list providers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list providers"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListProviderResponse(ps))
}

// failover godoc
// @Summary Fail over to the next provider
// @Description Deactivates the active provider and activates the next one by priority
// @Tags providers
// @Accept json
// @Produce json
// @Param failover body dto.FailoverRequest false "Reason for the rotation"
// @Success 200 {object} dto.FailoverResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "No provider or no fallback available"
// @Security BearerAuth
// @Router /providers/failover [post]
func (h *providerHandler) failover(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.FailoverRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = manualFailoverReason
	}
	if subject, ok := middleware.GetSubjectFromContext(c); ok {
		logger = logger.With(slog.String("requested_by", subject))
	}

	result, err := h.providerService.Failover(c.Request.Context(), reason)
	if err != nil {
		status, msg := statusAndMessage(err, "Failed to fail over")
		logger.Warn("Manual failover did not complete", slog.String("error", err.Error()))
		if errors.Is(err, apperrors.ErrNoFallbackAvailable) && result != nil {
			c.JSON(status, gin.H{"error": msg, "deactivated": result.Deactivated})
			return
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	logger.Info("Manual failover completed", slog.String("deactivated", result.Deactivated), slog.String("activated", result.Activated))
	c.JSON(http.StatusOK, dto.ToFailoverResponse(result))
}
