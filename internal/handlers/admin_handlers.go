package handlers

import (
	"net/http"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/amehra/folio/internal/repository"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AdminHandler handles price-store maintenance endpoints. The scheduled
// refresh job lives outside this service; these endpoints are its write
// surface plus manual housekeeping.
type AdminHandler struct {
	priceRepo *repository.PriceRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(priceRepo *repository.PriceRepository) *AdminHandler {
	return &AdminHandler{priceRepo: priceRepo}
}

// StorePricesRequest is the body for POST /admin/prices
type StorePricesRequest struct {
	SecurityID string              `json:"security_id" binding:"required"`
	Prices     []models.PricePoint `json:"prices" binding:"required"`
}

// StorePrices handles POST /admin/prices
// @Summary Upsert price history for a security
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/prices [post]
func (h *AdminHandler) StorePrices(c *gin.Context) {
	var req StorePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.priceRepo.StoreSeries(c.Request.Context(), req.SecurityID, req.Prices); err != nil {
		log.Errorf("failed to store prices for %s: %v", req.SecurityID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"security_id": models.NormalizeID(req.SecurityID),
		"stored":      len(req.Prices),
	})
}

// GetLatestPrice handles GET /admin/prices/:security_id/latest
// @Summary Get the most recent known price for a security
// @Tags admin
// @Produce json
// @Param security_id path string true "Security identifier"
// @Success 200 {object} models.PricePoint
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/prices/{security_id}/latest [get]
func (h *AdminHandler) GetLatestPrice(c *gin.Context) {
	securityID := c.Param("security_id")

	price, err := h.priceRepo.LatestClose(c.Request.Context(), securityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	if price == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "no price data for security",
		})
		return
	}

	c.JSON(http.StatusOK, price)
}

// PrunePrices handles DELETE /admin/prices
// @Summary Delete price history older than a cutoff date
// @Tags admin
// @Produce json
// @Param before query string true "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/prices [delete]
func (h *AdminHandler) PrunePrices(c *gin.Context) {
	cutoff, err := time.Parse("2006-01-02", c.Query("before"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "before must be a YYYY-MM-DD date",
		})
		return
	}

	deleted, err := h.priceRepo.PruneBefore(c.Request.Context(), cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
