package analytics

import (
	"net/http"

	"boxstudio/internal/shared/apperror"
	"boxstudio/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetFacts(c *gin.Context)
	GetKPIs(c *gin.Context)
	GetWindowed(c *gin.Context)
	GetSummary(c *gin.Context)
	GetTotals(c *gin.Context)
	ListMetrics(c *gin.Context)
	GetMetric(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	RegisterValidations()
	return &controller{service: service}
}

func (ctrl *controller) GetFacts(c *gin.Context) {
	facts, err := ctrl.service.GetFacts(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Facts retrieved successfully", facts, nil)
}

func (ctrl *controller) GetKPIs(c *gin.Context) {
	kpis, err := ctrl.service.GetKPIs(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "KPIs retrieved successfully", kpis, nil)
}

func (ctrl *controller) GetWindowed(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "start and end must be RFC3339 timestamps", nil, err.Error())
		return
	}
	start, end, err := req.Bounds()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "start and end must be RFC3339 timestamps", nil, err.Error())
		return
	}
	if start.After(end) {
		response.RespondError(c, apperror.ErrInvalidWindow)
		return
	}

	windowed, err := ctrl.service.GetWindowed(c.Request.Context(), start, end)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Windowed metrics retrieved successfully", windowed, nil)
}

func (ctrl *controller) GetSummary(c *gin.Context) {
	summary, err := ctrl.service.GetSummary(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Analytics summary retrieved successfully", summary, nil)
}

func (ctrl *controller) GetTotals(c *gin.Context) {
	totals, err := ctrl.service.GetTotals(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Totals retrieved successfully", totals, nil)
}

func (ctrl *controller) ListMetrics(c *gin.Context) {
	response.RespondJSON(c, "success", http.StatusOK, "Metrics retrieved successfully", ctrl.service.ListMetrics(), nil)
}

func (ctrl *controller) GetMetric(c *gin.Context) {
	metric, err := ctrl.service.GetMetric(c.Param("name"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Metric retrieved successfully", metric, nil)
}
