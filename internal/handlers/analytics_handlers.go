package handlers

import (
	"net/http"
	"strconv"

	"github.com/amehra/folio/internal/models"
	"github.com/amehra/folio/internal/services"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler handles the dashboard analytics endpoints
type AnalyticsHandler struct {
	analyticsSvc *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// GetAnalytics handles GET /portfolios/:id/analytics
// @Summary Get portfolio analytics
// @Description Full dashboard payload: summary, holdings with returns, monthly series, sector distribution and realized positions
// @Tags analytics
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {object} models.PortfolioAnalytics
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id}/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	portfolioID, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	payload, err := h.analyticsSvc.PortfolioAnalytics(ctx, portfolioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	payload.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, payload)
}

// GetRealized handles GET /portfolios/:id/realized
// @Summary Get realized positions
// @Description One row per fully exited security, reconciled across the realized-lot ledger and the transaction history
// @Tags analytics
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {array} models.RealizedStockSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id}/realized [get]
func (h *AnalyticsHandler) GetRealized(c *gin.Context) {
	portfolioID, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	realized, err := h.analyticsSvc.RealizedStocks(c.Request.Context(), portfolioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, realized)
}

// GetMonthlyReturns handles GET /portfolios/:id/returns/monthly
// @Summary Get monthly mark-to-market returns
// @Description Trailing five years of month-over-month portfolio returns plus derived statistics
// @Tags analytics
// @Produce json
// @Param id path int true "Portfolio ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /portfolios/{id}/returns/monthly [get]
func (h *AnalyticsHandler) GetMonthlyReturns(c *gin.Context) {
	portfolioID, ok := parsePortfolioID(c)
	if !ok {
		return
	}

	returns, stats, err := h.analyticsSvc.MonthlyReturns(c.Request.Context(), portfolioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"monthly_returns":   returns,
		"return_statistics": stats,
	})
}

func parsePortfolioID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "portfolio id must be an integer",
		})
		return 0, false
	}
	return id, true
}
