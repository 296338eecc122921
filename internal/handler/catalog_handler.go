package handler

import (
	"net/http"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	readRoles := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RolePartner)
	writeRoles := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	categories := router.Group("/api/categories")
	{
		categories.GET("", readRoles, h.ListCategories)
		categories.POST("", writeRoles, h.CreateCategory)
		categories.PUT("/:id", writeRoles, h.UpdateCategory)
		categories.DELETE("/:id", writeRoles, h.DeleteCategory)
	}

	brands := router.Group("/api/brands")
	{
		brands.GET("", readRoles, h.ListBrands)
		brands.POST("", writeRoles, h.CreateBrand)
		brands.PUT("/:id", writeRoles, h.UpdateBrand)
		brands.DELETE("/:id", writeRoles, h.DeleteBrand)
	}

	// Storefront navigation, no auth
	public := router.Group("/api/public")
	{
		public.GET("/categories", h.ListCategories)
		public.GET("/brands", h.ListBrands)
	}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req service.CategoryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Category deleted successfully"))
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, err := h.catalogService.ListBrands(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, brands))
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req service.BrandPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	brand, err := h.catalogService.CreateBrand(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, brand))
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	var req service.BrandPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	brand, err := h.catalogService.UpdateBrand(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, brand))
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	if err := h.catalogService.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Brand deleted successfully"))
}
