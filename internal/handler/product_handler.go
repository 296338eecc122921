package handler

import (
	"net/http"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/pagination"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		// Catalog reads are open to partner accounts as well.
		products.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RolePartner), h.ListProducts)
		products.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RolePartner), h.GetProduct)

		products.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateProduct)
		products.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateProduct)
		products.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteProduct)
	}

	// Storefront browse, no auth, active products only
	public := router.Group("/api/public/products")
	{
		public.GET("", h.BrowseProducts)
		public.GET("/:id", h.GetPublicProduct)
	}
}

// BrowseProducts is the unauthenticated storefront listing
// @Summary      Browse the public catalog
// @Tags         public
// @Produce      json
// @Param        search       query     string  false  "Search in name and SKU"
// @Param        category_id  query     string  false  "Filter by category"
// @Param        brand_id     query     string  false  "Filter by brand"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/public/products [get]
func (h *ProductHandler) BrowseProducts(c *gin.Context) {
	params := pagination.Parse(c)

	query := service.ProductListQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		BrandID:    c.Query("brand_id"),
		ActiveOnly: true,
		Page:       params.Page,
		Limit:      params.Limit,
	}

	products, total, err := h.productService.GetProducts(c.Request.Context(), query)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ListProducts returns a paginated catalog listing
// @Summary      List products
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        search       query     string  false  "Search in name and SKU"
// @Param        category_id  query     string  false  "Filter by category"
// @Param        brand_id     query     string  false  "Filter by brand"
// @Param        active       query     bool    false  "Only active products"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)

	query := service.ProductListQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		BrandID:    c.Query("brand_id"),
		ActiveOnly: c.Query("active") == "true",
		Page:       params.Page,
		Limit:      params.Limit,
	}

	products, total, err := h.productService.GetProducts(c.Request.Context(), query)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetPublicProduct is the storefront detail view. Delisted products stay
// reachable for staff through GetProduct but 404 here.
func (h *ProductHandler) GetPublicProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	if !product.Active {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "product not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// GetProduct returns one product with tax rate, category and brand preloaded
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// CreateProduct adds a catalog item
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct patches a catalog item
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct soft deletes a catalog item
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted successfully"))
}
