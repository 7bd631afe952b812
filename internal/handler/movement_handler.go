package handler

import (
	"net/http"

	"github.com/BrightonDube/BizPilot2-sub004/internal/apierror"
	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MovementHandler struct{ svc service.MovementService }

func NewMovementHandler(svc service.MovementService) *MovementHandler {
	return &MovementHandler{svc: svc}
}

// RecordMovement godoc
// @Summary Record a manual cash or non-cash movement on an open session
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovementRequest true "Movement data"
// @Success 201 {object} dto.MovementResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/movement [post]
func (h *MovementHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, userID, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.RecordMovement(c.Request.Context(), businessID, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordSale godoc
// @Summary Record a completed sale against an open session
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SaleRequest true "Sale data"
// @Success 200 {object} dto.TotalsResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/sale [post]
func (h *MovementHandler) RecordSale(c *gin.Context) {
	var req dto.SaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, userID, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.RecordSale(c.Request.Context(), businessID, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordRefund godoc
// @Summary Record a refund against an open session
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RefundRequest true "Refund data"
// @Success 200 {object} dto.TotalsResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/refund [post]
func (h *MovementHandler) RecordRefund(c *gin.Context) {
	var req dto.RefundRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, userID, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.RecordRefund(c.Request.Context(), businessID, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovements godoc
// @Summary List the manual movements of a session in entry order
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.MovementListResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash/{id}/movements [get]
func (h *MovementHandler) ListMovements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListMovements(c.Request.Context(), businessID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
