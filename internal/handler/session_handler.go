package handler

import (
	"net/http"

	"github.com/BrightonDube/BizPilot2-sub004/internal/apierror"
	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct{ svc service.SessionService }

func NewSessionHandler(svc service.SessionService) *SessionHandler { return &SessionHandler{svc: svc} }

// Open godoc
// @Summary Open a cash session on a register
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/cash/open [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, userID, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), businessID, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Close a cash session with a counted cash declaration
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Closing declaration"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, userID, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), businessID, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetReport godoc
// @Summary Get the full report of a cash session
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash/{id}/report [get]
func (h *SessionHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), businessID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActive godoc
// @Summary Get the open session on a register, if any
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param register_id query string true "Register ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash/active [get]
func (h *SessionHandler) GetActive(c *gin.Context) {
	registerID, err := uuid.Parse(c.Query("register_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register_id"))
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetActive(c.Request.Context(), businessID, registerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary List closed sessions, newest first
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param register_id query string false "Filter by register"
// @Param from query string false "Closed on or after (YYYY-MM-DD)"
// @Param to query string false "Closed on or before (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.SessionListResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/cash/history [get]
func (h *SessionHandler) History(c *gin.Context) {
	var f dto.HistoryFilter
	if !bindQueryAndValidate(c, &f) {
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.History(c.Request.Context(), businessID, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
