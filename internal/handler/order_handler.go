package handler

import (
	"net/http"
	"strconv"
	"time"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService      service.OrderService
	commissionService service.CommissionService
}

func NewOrderHandler(orderService service.OrderService, commissionService service.CommissionService) *OrderHandler {
	return &OrderHandler{
		orderService:      orderService,
		commissionService: commissionService,
	}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders")
	{
		orders.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RolePartner), h.CreateOrder)
		orders.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ListOrders)
		orders.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GetOrder)
		orders.PUT("/:id/status", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateOrderStatus)
	}

	// Monthly commission summary lives on its own route group
	commissions := router.Group("/api/commissions")
	{
		commissions.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GetCommissionSummary)
	}
}

// CreateOrder records a manual or partner order
// @Summary      Create order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Create Order Payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders returns a paginated list filtered by status/source/partner
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "Filter by status (PENDING, COMPLETED, CANCELLED)"
// @Param        source         query     string  false  "Filter by source (MANUAL, PARTNER)"
// @Param        partner_email  query     string  false  "Filter by partner email"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	query := service.OrderListQuery{
		Status:       c.Query("status"),
		Source:       c.Query("source"),
		PartnerEmail: c.Query("partner_email"),
		Page:         page,
		Limit:        limit,
	}

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	}))
}

// GetOrder returns one order with its items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrderStatus completes or cancels a pending order
// @Summary      Update order status
// @Description  Moves a pending order to COMPLETED or CANCELLED. Terminal states are final.
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Order ID"
// @Param        payload  body      object  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GetCommissionSummary returns per-partner commission totals for one month
// @Summary      Monthly commission summary
// @Description  Groups completed orders by partner for the given month and applies the flat commission
// @Tags         commissions
// @Security     BearerAuth
// @Produce      json
// @Param        month  query     string  false  "Month in YYYY-MM format (default: current month)"
// @Success      200    {object}  response.Response{data=[]service.PartnerCommission}
// @Failure      400    {object}  response.Response
// @Router       /api/commissions [get]
func (h *OrderHandler) GetCommissionSummary(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	summary, err := h.commissionService.Summarize(c.Request.Context(), month)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"month":    month,
		"partners": summary,
	}))
}
