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

type DayEndHandler struct{ svc service.DayEndService }

func NewDayEndHandler(svc service.DayEndService) *DayEndHandler {
	return &DayEndHandler{svc: svc}
}

// Open godoc
// @Summary Open (or resume) today's day-end for the authenticated cashier
// @Tags dayend
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenDayEndRequest true "Opening balance and notes"
// @Success 200 {object} dto.DayEndResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/dayend/open [post]
func (h *DayEndHandler) Open(c *gin.Context) {
	var req dto.OpenDayEndRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user ID"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), cashierID, req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActive returns the authenticated cashier's open day-end for today.
func (h *DayEndHandler) GetActive(c *gin.Context) {
	claims := middleware.GetClaims(c)
	cashierID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user ID"))
		return
	}
	resp, err := h.svc.GetActive(c.Request.Context(), cashierID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Fetch a day-end by ID
// @Tags dayend
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day-end ID"
// @Success 200 {object} dto.DayEndResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/dayend/{id} [get]
func (h *DayEndHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid day-end ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !h.canView(c, resp.CashierID) {
		c.JSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns paginated day-ends across all cashiers.
func (h *DayEndHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list day-ends"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns the paginated day-end history for one cashier.
func (h *DayEndHandler) History(c *gin.Context) {
	cashierID, err := uuid.Parse(c.Param("cashier_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid cashier ID"))
		return
	}
	if !h.canView(c, cashierID.String()) {
		c.JSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
		return
	}
	page, limit := pagination(c)
	resp, err := h.svc.CashierHistory(c.Request.Context(), cashierID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Could not list day-ends"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddSale godoc
// @Summary Attach a sale to an open day-end
// @Tags dayend
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day-end ID"
// @Param sale_id path string true "Sale ID"
// @Success 200 {object} dto.DayEndResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/dayend/{id}/sales/{sale_id} [post]
func (h *DayEndHandler) AddSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid day-end ID"))
		return
	}
	saleID, err := uuid.Parse(c.Param("sale_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale ID"))
		return
	}
	resp, err := h.svc.AddSale(c.Request.Context(), id, saleID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close godoc
// @Summary Close a day-end with the counted cash
// @Tags dayend
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day-end ID"
// @Param body body dto.CloseDayEndRequest true "Counted cash and notes"
// @Success 200 {object} dto.DayEndResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/dayend/{id}/close [post]
func (h *DayEndHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid day-end ID"))
		return
	}
	var req dto.CloseDayEndRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary Formatted closing report for a day-end
// @Tags dayend
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day-end ID"
// @Success 200 {object} dto.DayEndSummary
// @Failure 404 {object} apierror.APIError
// @Router /v1/dayend/{id}/summary [get]
func (h *DayEndHandler) Summary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid day-end ID"))
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !h.canView(c, resp.CashierID) {
		c.JSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// canView allows managers and admins to see any day-end; cashiers only their own.
func (h *DayEndHandler) canView(c *gin.Context, cashierID string) bool {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return false
	}
	if claims.Role == middleware.RoleManager || claims.Role == middleware.RoleAdmin {
		return true
	}
	return claims.UserID == cashierID
}

func (h *DayEndHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDayEndNotFound),
		errors.Is(err, service.ErrNoActiveDayEnd),
		errors.Is(err, service.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDayEndClosed),
		errors.Is(err, service.ErrSaleVoided),
		errors.Is(err, service.ErrNegativeAmount):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}
