package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/SscSPs/mycurrency/internal/middleware"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Converter validation messages.
const (
	msgSourceRequired      = "The currency code source must be specified !"
	msgDestinationRequired = "The currency code destination must be specified !"
	msgDateRequired        = "The valuation date must be specified !"
	msgDateIncorrect       = "The valuation date is incorrect !"
	msgAmountIncorrect     = "The amount must be a positive number !"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers the public converter and the admin import.
func registerExchangeRateRoutes(public, admin *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	public.GET("/currency-converter", h.convert)
	admin.POST("/exchange-rates/import", h.importRange)
}

// convert godoc
// @Summary Convert an amount between two currencies
// @Description Returns the rate for a pair at a valuation date, read from the store or the active provider.
// @Description status is "ok" with a rate, "ok" with a message when no rate exists, or "ko" with a reason.
// @Tags exchange-rates
// @Produce json
// @Param from_currency query string true "Source currency code"
// @Param to_currency query string true "Destination currency code"
// @Param valuation_date query string true "Valuation date (YYYY-MM-DD)"
// @Param amount query string false "Amount to convert (default 1)"
// @Success 200 {object} dto.ConverterResponse
// @Failure 400 {object} dto.ConverterResponse
// @Failure 503 {object} dto.ConverterResponse
// @Failure 504 {object} dto.ConverterResponse
// @Router /currency-converter [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var q dto.ConverterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.KOResponse("Invalid query: "+err.Error()))
		return
	}

	from := strings.ToUpper(strings.TrimSpace(q.FromCurrency))
	to := strings.ToUpper(strings.TrimSpace(q.ToCurrency))
	switch {
	case from == "":
		c.JSON(http.StatusBadRequest, dto.KOResponse(msgSourceRequired))
		return
	case to == "":
		c.JSON(http.StatusBadRequest, dto.KOResponse(msgDestinationRequired))
		return
	case strings.TrimSpace(q.ValuationDate) == "":
		c.JSON(http.StatusBadRequest, dto.KOResponse(msgDateRequired))
		return
	}

	valuationDate, err := dates.Parse(strings.TrimSpace(q.ValuationDate))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.KOResponse(msgDateIncorrect))
		return
	}

	amount := decimal.NewFromInt(1)
	if raw := strings.TrimSpace(q.Amount); raw != "" {
		amount, err = decimal.NewFromString(raw)
		if err != nil || !amount.IsPositive() {
			c.JSON(http.StatusBadRequest, dto.KOResponse(msgAmountIncorrect))
			return
		}
	}

	logger = logger.With(
		slog.String("from", from),
		slog.String("to", to),
		slog.String("valuation_date", dates.Format(valuationDate)),
	)

	converted, quote, err := h.exchangeRateService.ConvertAmount(c.Request.Context(), amount, from, to, valuationDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrRemoteDataMissing) {
			logger.Info("No rate available for pair")
			c.JSON(http.StatusOK, dto.NoDataResponse(from, to, dates.Format(valuationDate)))
			return
		}
		status, msg := statusAndMessage(err, "Failed to convert amount")
		if status >= http.StatusInternalServerError {
			logger.Error("Rate lookup failed", slog.String("error", err.Error()))
		} else {
			logger.Warn("Rate lookup rejected", slog.String("error", err.Error()))
		}
		c.JSON(status, dto.KOResponse(msg))
		return
	}

	logger.Info("Rate resolved", slog.String("origin", string(quote.Origin)), slog.String("provider", quote.ProviderName))
	c.JSON(http.StatusOK, dto.ToConverterResponse(quote, amount, converted))
}

// importRange godoc
// @Summary Backfill exchange rates
// @Description Fetches and stores the daily rates of every pair among the given currencies.
// @Tags exchange-rates
// @Accept json
// @Produce json
// @Param import body dto.ImportRequest true "Currencies and inclusive date range"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 503 {object} ErrorResponse "Provider unavailable"
// @Security BearerAuth
// @Router /exchange-rates/import [post]
func (h *exchangeRateHandler) importRange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportRange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	from, err := dates.Parse(req.FromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "fromDate: " + err.Error()})
		return
	}
	to, err := dates.Parse(req.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "toDate: " + err.Error()})
		return
	}

	logger.Info("Received request to import exchange rates",
		slog.Any("currencies", req.Currencies),
		slog.String("from", req.FromDate),
		slog.String("to", req.ToDate),
	)

	summary, err := h.exchangeRateService.ImportRange(c.Request.Context(), req.Currencies, from, to)
	if err != nil {
		status, msg := statusAndMessage(err, "Failed to import exchange rates")
		logger.Error("Exchange rate import failed", slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.ToImportResponse(summary))
}
