// Alert 조회 및 수동 healing re-trigger 요청을 처리하는 핸들러

package handler

import (
	"net/http"
	"strconv"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/service"
	"github.com/data-sentry/backend/internal/store"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alerts       *store.AlertStore
	logs         *store.LogStore
	orchestrator *service.Orchestrator

	// resolutions: DB 미설정 시 nil (유사 이력 조회 비활성)
	resolutions *service.ResolutionService
}

func NewAlertHandler(alerts *store.AlertStore, logs *store.LogStore, orchestrator *service.Orchestrator, resolutions *service.ResolutionService) *AlertHandler {
	return &AlertHandler{
		alerts:       alerts,
		logs:         logs,
		orchestrator: orchestrator,
		resolutions:  resolutions,
	}
}

// List godoc
// @Summary List alerts
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Alert
// @Router /api/v1/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.Snapshot())
}

// Detail godoc
// @Summary Get alert detail
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} model.AlertDetailEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id} [get]
func (h *AlertHandler) Detail(c *gin.Context) {
	alert, ok := h.alerts.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "alert not found"})
		return
	}

	c.JSON(http.StatusOK, model.AlertDetailEnvelope{
		Status: "success",
		Data:   &alert,
	})
}

// RelatedLogs godoc
// @Summary List logs related to an alert
// @Description Returns the alert's related records, falling back to problem logs of the affected service.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {array} model.LogRecord
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id}/logs [get]
func (h *AlertHandler) RelatedLogs(c *gin.Context) {
	alert, ok := h.alerts.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "alert not found"})
		return
	}

	c.JSON(http.StatusOK, service.RelatedLogs(alert, h.logs.Snapshot()))
}

// Similar godoc
// @Summary Find similar past resolutions
// @Description Embedding nearest-neighbor search over archived resolutions.
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param limit query int false "Max results (default 5)"
// @Success 200 {array} model.SimilarResolution
// @Failure 404 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id}/similar [get]
func (h *AlertHandler) Similar(c *gin.Context) {
	if h.resolutions == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "similarity search is not configured"})
		return
	}

	id := c.Param("id")
	if _, ok := h.alerts.Get(id); !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "alert not found"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	results, err := h.resolutions.FindSimilar(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

// Heal godoc
// @Summary Re-trigger healing for a stalled alert
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 202 {object} model.HealTriggerResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id}/heal [post]
func (h *AlertHandler) Heal(c *gin.Context) {
	id := c.Param("id")
	alert, ok := h.alerts.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "alert not found"})
		return
	}
	if alert.Status == model.StatusResolved {
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "alert is already resolved"})
		return
	}

	if err := h.orchestrator.RequestHeal(id); err != nil {
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, model.HealTriggerResponse{
		Status:  "accepted",
		Message: "Healing sequence requested",
		AlertID: id,
	})
}
