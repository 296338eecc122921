package handler

import (
	"net/http"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxRateService
}

func NewTaxHandler(taxService service.TaxRateService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	tax := router.Group("/api/tax-rates")
	tax.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		tax.GET("", h.ListTaxRates)
		tax.POST("", h.CreateTaxRate)
		tax.PUT("/:id", h.UpdateTaxRate)
		tax.DELETE("/:id", h.DeleteTaxRate)
		tax.POST("/:id/reassign", h.ReassignProducts)
	}
}

// ListTaxRates returns tax rates ordered by sort_order; ?active=true hides disabled ones
func (h *TaxHandler) ListTaxRates(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	rates, err := h.taxService.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// CreateTaxRate creates a new VAT rate entry
func (h *TaxHandler) CreateTaxRate(c *gin.Context) {
	var req service.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.taxService.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// UpdateTaxRate patches an existing rate; setting is_default clears the previous default
func (h *TaxHandler) UpdateTaxRate(c *gin.Context) {
	var req service.UpdateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.taxService.Update(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// DeleteTaxRate removes an unreferenced rate; referenced rates return 409
func (h *TaxHandler) DeleteTaxRate(c *gin.Context) {
	if err := h.taxService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tax rate deleted successfully"))
}

// ReassignProducts moves all products from this rate onto another one
func (h *TaxHandler) ReassignProducts(c *gin.Context) {
	var req struct {
		NewTaxRateID string `json:"new_tax_rate_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.taxService.BulkReassign(c.Request.Context(), c.Param("id"), req.NewTaxRateID, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
