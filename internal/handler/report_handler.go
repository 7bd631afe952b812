package handler

import (
	"net/http"

	"github.com/BrightonDube/BizPilot2-sub004/internal/dto"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler { return &ReportHandler{svc: svc} }

// Reconciliation godoc
// @Summary Aggregate reconciliation figures across closed sessions
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "Closed on or after (YYYY-MM-DD)"
// @Param to query string false "Closed on or before (YYYY-MM-DD)"
// @Param register_id query string false "Filter by register"
// @Success 200 {object} dto.ReconciliationReportResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/reports/cash [get]
func (h *ReportHandler) Reconciliation(c *gin.Context) {
	var f dto.ReportFilter
	if !bindQueryAndValidate(c, &f) {
		return
	}
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	resp, err := h.svc.Reconciliation(c.Request.Context(), businessID, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
