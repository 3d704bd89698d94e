package rates

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/middleware"
	"github.com/richxcame/expense-tracker/pkg/validation"
)

// MaxBatchCurrencies bounds the from list of a batch request
const MaxBatchCurrencies = 50

// Handler handles HTTP requests for exchange rates
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new rates handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetRate returns a single rate
// GET /api/v1/rates?from=USD&to=BRL&date=2024-01-31
func (h *Handler) GetRate(c *gin.Context) {
	var q RateQuery
	if !middleware.ValidateAndBindQuery(c, &q) {
		return
	}

	date, err := parseDate(q.Date)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid date")
		return
	}

	rate, ok := h.service.GetRate(c.Request.Context(), q.From, q.To, date)
	if !ok {
		common.ErrorResponse(c, http.StatusNotFound, "exchange rate not available")
		return
	}

	common.SuccessResponse(c, RateResponse{
		From: strings.ToUpper(q.From),
		To:   strings.ToUpper(q.To),
		Date: datasetFor(date),
		Rate: rate,
	})
}

// GetBatchRates returns rates for several base currencies
// GET /api/v1/rates/batch?from=USD,EUR&to=BRL
func (h *Handler) GetBatchRates(c *gin.Context) {
	var q BatchQuery
	if !middleware.ValidateAndBindQuery(c, &q) {
		return
	}

	date, err := parseDate(q.Date)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid date")
		return
	}

	froms := splitCodes(q.From)
	if len(froms) == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "from must list at least one currency")
		return
	}
	if len(froms) > MaxBatchCurrencies {
		common.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("from lists more than %d currencies", MaxBatchCurrencies))
		return
	}
	for _, code := range froms {
		if !validation.IsCurrencyCode(code) {
			common.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid currency code: %s", code))
			return
		}
	}

	to := strings.ToUpper(q.To)
	result := h.service.GetBatchRates(c.Request.Context(), froms, to, date)

	var missing []string
	for _, code := range froms {
		if _, ok := result[code]; !ok {
			missing = append(missing, code)
		}
	}

	common.SuccessResponse(c, BatchRatesResponse{
		To:      to,
		Date:    datasetFor(date),
		Rates:   result,
		Missing: missing,
	})
}

// Convert converts an amount between currencies
// POST /api/v1/rates/convert
func (h *Handler) Convert(c *gin.Context) {
	var req ConvertRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid date")
		return
	}

	conv, err := h.service.Convert(c.Request.Context(), req.Amount, req.From, req.To, date)
	if err != nil {
		common.HandleError(c, err, "failed to convert amount")
		return
	}

	common.SuccessResponse(c, ConvertResponse{
		Conversion:         *conv,
		FormattedAmount:    i18n.FormatAmount(conv.Amount, conv.From),
		FormattedConverted: i18n.FormatAmount(conv.ConvertedAmount, conversionCurrency(conv)),
	})
}

// RegisterRoutes registers rate routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	r := rg.Group("/rates")
	{
		r.GET("", h.GetRate)
		r.GET("/batch", h.GetBatchRates)
		r.POST("/convert", h.Convert)
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func splitCodes(list string) []string {
	var codes []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(list, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// an unconverted amount is still in the source currency
func conversionCurrency(conv *Conversion) string {
	if conv.Converted {
		return conv.To
	}
	return conv.From
}
