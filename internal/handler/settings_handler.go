package handler

import (
	"net/http"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/api/settings")
	{
		settings.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GetSettings)
		settings.PUT("", middleware.RequireRole(model.RoleAdmin), h.UpdateSettings)
	}
}

// GetSettings returns the singleton company settings row
// @Summary      Get company settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.CompanySettings}
// @Router       /api/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}

// UpdateSettings patches company identity, banking and numbering fields
// @Summary      Update company settings
// @Description  Partial update. The proforma counter can only move forward.
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateSettingsRequest  true  "Settings Payload"
// @Success      200      {object}  response.Response{data=model.CompanySettings}
// @Failure      400      {object}  response.Response
// @Router       /api/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, settings))
}
