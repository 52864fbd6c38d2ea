package handler

import (
	"errors"
	"net/http"

	"anypos/internal/apierror"
	"anypos/internal/dto"
	"anypos/internal/middleware"
	"anypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Register godoc
// @Summary Register a completed sale
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegisterSaleRequest true "Sale lines and payment"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SalesHandler) Register(c *gin.Context) {
	var req dto.RegisterSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user ID"))
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), cashierID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Fetch a sale by ID
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Sale not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Could not fetch sale"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns paginated sales; defaults to today's sales.
func (h *SalesHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	filter := dto.SaleFilter{
		Status: c.DefaultQuery("status", "completed"),
		Date:   c.Query("date"),
		Page:   page,
		Limit:  limit,
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list sales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void godoc
// @Summary Void a sale
// @Tags sales
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sale ID"
// @Param reason query string false "Void reason"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id} [delete]
func (h *SalesHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	if err := h.svc.Void(c.Request.Context(), id, c.Query("reason")); err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			c.JSON(http.StatusNotFound, apierror.New("Sale not found"))
		case errors.Is(err, service.ErrSaleVoided):
			c.JSON(http.StatusBadRequest, apierror.New("Sale is already voided"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Could not void sale"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}
