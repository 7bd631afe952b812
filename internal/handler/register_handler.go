package handler

import (
	"net/http"

	"github.com/BrightonDube/BizPilot2-sub004/internal/apierror"
	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Create godoc
// @Summary Create a register
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateRegisterRequest true "Register data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/registers [post]
func (h *RegisterHandler) Create(c *gin.Context) {
	var req dto.CreateRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), businessID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List the business's registers
// @Tags registers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RegisterListResponse
// @Router /v1/registers [get]
func (h *RegisterHandler) List(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), businessID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a register
// @Tags registers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Success 200 {object} dto.RegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id} [get]
func (h *RegisterHandler) Get(c *gin.Context) {
	id, ok := registerID(c)
	if !ok {
		return
	}
	businessID, _, idOK := identity(c)
	if !idOK {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), businessID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rename godoc
// @Summary Rename a register
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Param body body dto.RenameRegisterRequest true "New name"
// @Success 200 {object} dto.RegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id} [put]
func (h *RegisterHandler) Rename(c *gin.Context) {
	id, ok := registerID(c)
	if !ok {
		return
	}
	var req dto.RenameRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	businessID, _, idOK := identity(c)
	if !idOK {
		return
	}

	resp, err := h.svc.Rename(c.Request.Context(), businessID, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary Deactivate a register so no new sessions can open on it
// @Tags registers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Success 200 {object} dto.RegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id}/deactivate [patch]
func (h *RegisterHandler) Deactivate(c *gin.Context) {
	id, ok := registerID(c)
	if !ok {
		return
	}
	businessID, _, idOK := identity(c)
	if !idOK {
		return
	}

	resp, err := h.svc.Deactivate(c.Request.Context(), businessID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reactivate godoc
// @Summary Reactivate a register
// @Tags registers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Success 200 {object} dto.RegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id}/reactivate [patch]
func (h *RegisterHandler) Reactivate(c *gin.Context) {
	id, ok := registerID(c)
	if !ok {
		return
	}
	businessID, _, idOK := identity(c)
	if !idOK {
		return
	}

	resp, err := h.svc.Reactivate(c.Request.Context(), businessID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func registerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return uuid.Nil, false
	}
	return id, true
}
