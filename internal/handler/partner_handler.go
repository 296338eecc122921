package handler

import (
	"net/http"
	"strconv"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartnerHandler struct {
	partnerService service.PartnerService
}

func NewPartnerHandler(partnerService service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

func (h *PartnerHandler) RegisterRoutes(router *gin.RouterGroup) {
	partners := router.Group("/api/partners")
	partners.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		partners.GET("", h.ListPartners)
		partners.GET("/:id", h.GetPartner)
		partners.POST("", h.CreatePartner)
		partners.PUT("/:id", h.UpdatePartner)
		partners.DELETE("/:id", h.DeletePartner)
	}
}

// ListPartners returns a paginated partner list, optionally filtered by search
// @Summary      List partners
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search in name, email and company"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/partners [get]
func (h *PartnerHandler) ListPartners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	partners, total, err := h.partnerService.GetPartners(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"partners": partners,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}))
}

func (h *PartnerHandler) GetPartner(c *gin.Context) {
	partner, err := h.partnerService.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, partner))
}

func (h *PartnerHandler) CreatePartner(c *gin.Context) {
	var req service.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	partner, err := h.partnerService.CreatePartner(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, partner))
}

func (h *PartnerHandler) UpdatePartner(c *gin.Context) {
	var req service.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	partner, err := h.partnerService.UpdatePartner(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, partner))
}

func (h *PartnerHandler) DeletePartner(c *gin.Context) {
	if err := h.partnerService.DeletePartner(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Partner deleted successfully"))
}
