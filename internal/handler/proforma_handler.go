package handler

import (
	"net/http"
	"strconv"

	"otka-backend/internal/middleware"
	"otka-backend/internal/model"
	"otka-backend/internal/repository"
	"otka-backend/internal/service"
	"otka-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProformaHandler struct {
	proformaService service.ProformaService
}

func NewProformaHandler(proformaService service.ProformaService) *ProformaHandler {
	return &ProformaHandler{proformaService: proformaService}
}

func (h *ProformaHandler) RegisterRoutes(router *gin.RouterGroup) {
	proforme := router.Group("/api/proforme")
	proforme.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		proforme.POST("", h.CreateProforma)
		proforme.GET("", h.ListProforme)
		proforme.GET("/:id", h.GetProforma)
		proforme.PUT("/:id/confirm-payment", h.ConfirmPayment)
		proforme.PUT("/:id/cancel", h.CancelProforma)
		proforme.DELETE("/:id", h.DeleteProforma)
		proforme.GET("/:id/pdf", h.DownloadPDF)
		proforme.POST("/:id/email", h.SendEmail)
	}
}

// CreateProforma issues a new proforma with a minted sequential number
// @Summary      Create proforma
// @Description  Validates the client and items, computes totals and mints the next document number
// @Tags         proforme
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProformaRequest  true  "Create Proforma Payload"
// @Success      201      {object}  response.Response{data=service.ProformaResponse}
// @Failure      400      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /api/proforme [post]
func (h *ProformaHandler) CreateProforma(c *gin.Context) {
	var req service.CreateProformaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	proforma, err := h.proformaService.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, proforma))
}

// ListProforme returns a paginated list, optionally filtered
// @Summary      List proforme
// @Description  Retrieves a paginated list filtered by status, number or client name
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (pending, paid, cancelled)"
// @Param        number  query     string  false  "Filter by full number"
// @Param        client  query     string  false  "Filter by client name (substring)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/proforme [get]
func (h *ProformaHandler) ListProforme(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.ProformaListFilter{
		Status:     c.Query("status"),
		FullNumber: c.Query("number"),
		ClientName: c.Query("client"),
		Page:       page,
		Limit:      limit,
	}

	proforme, total, err := h.proformaService.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"proforme": proforme,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}))
}

// GetProforma returns one proforma with its items
// @Summary      Get proforma
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proforma ID"
// @Success      200  {object}  response.Response{data=service.ProformaResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/proforme/{id} [get]
func (h *ProformaHandler) GetProforma(c *gin.Context) {
	proforma, err := h.proformaService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, proforma))
}

// ConfirmPayment marks a pending proforma as paid
// @Summary      Confirm payment
// @Description  Marks a pending proforma as paid. Paid documents become immutable.
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proforma ID"
// @Success      200  {object}  response.Response{data=service.ProformaResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/proforme/{id}/confirm-payment [put]
func (h *ProformaHandler) ConfirmPayment(c *gin.Context) {
	proforma, err := h.proformaService.ConfirmPayment(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, proforma))
}

// CancelProforma cancels a pending proforma
// @Summary      Cancel proforma
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proforma ID"
// @Success      200  {object}  response.Response{data=service.ProformaResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/proforme/{id}/cancel [put]
func (h *ProformaHandler) CancelProforma(c *gin.Context) {
	proforma, err := h.proformaService.Cancel(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, proforma))
}

// DeleteProforma removes a proforma that was never paid
// @Summary      Delete proforma
// @Description  Deletes a pending or cancelled proforma. Paid documents cannot be deleted.
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proforma ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/proforme/{id} [delete]
func (h *ProformaHandler) DeleteProforma(c *gin.Context) {
	if err := h.proformaService.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Proforma deleted successfully"))
}

// DownloadPDF streams the rendered PDF
// @Summary      Download proforma PDF
// @Tags         proforme
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  string  true  "Proforma ID"
// @Success      200  {file}  file
// @Failure      404  {object}  response.Response
// @Router       /api/proforme/{id}/pdf [get]
func (h *ProformaHandler) DownloadPDF(c *gin.Context) {
	data, filename, err := h.proformaService.GeneratePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// SendEmail emails the proforma PDF to the client
// @Summary      Email proforma
// @Description  Renders the PDF and sends it to the client email on record
// @Tags         proforme
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Proforma ID"
// @Success      200  {object}  response.Response{data=service.ProformaResponse}
// @Failure      502  {object}  response.Response
// @Router       /api/proforme/{id}/email [post]
func (h *ProformaHandler) SendEmail(c *gin.Context) {
	// Optional override of the destination address.
	var body struct {
		To string `json:"to"`
	}
	_ = c.ShouldBindJSON(&body)

	proforma, err := h.proformaService.SendEmail(c.Request.Context(), c.Param("id"), body.To, currentUserID(c))
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, proforma))
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)
	return idStr
}
