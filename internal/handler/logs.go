// 로그 수집/조회 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. 수집기/데모 클라이언트가 POST /api/v1/logs 계열로 원본 로그 전송
//  2. 파싱과 append는 service 레이어에 위임 (파싱 실패는 0건 응답, 에러 아님)
//  3. 조회는 Log Store 스냅샷을 그대로 반환

package handler

import (
	"log"
	"net/http"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/service"
	"github.com/data-sentry/backend/internal/store"
	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	svc  *service.IngestService
	logs *store.LogStore
}

func NewLogHandler(svc *service.IngestService, logs *store.LogStore) *LogHandler {
	return &LogHandler{
		svc:  svc,
		logs: logs,
	}
}

// Ingest godoc
// @Summary Ingest raw log text
// @Description Parses free-form log text into structured records and appends them.
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.IngestRequest true "Raw log text"
// @Success 200 {object} model.IngestResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/logs [post]
func (h *LogHandler) Ingest(c *gin.Context) {
	var req model.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload"})
		return
	}

	parsed, appended := h.svc.IngestText(c.Request.Context(), req.Text)
	log.Printf("Ingested raw log text: parsed=%d, appended=%d", parsed, appended)

	c.JSON(http.StatusOK, model.IngestResponse{
		Status:   "received",
		Parsed:   parsed,
		Appended: appended,
	})
}

// IngestBatch godoc
// @Summary Ingest a structured log batch
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.BatchIngestRequest true "Structured log records"
// @Success 200 {object} model.IngestResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/logs/batch [post]
func (h *LogHandler) IngestBatch(c *gin.Context) {
	var req model.BatchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload"})
		return
	}
	if len(req.Logs) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "logs is required"})
		return
	}

	appended := h.svc.IngestBatch(req.Logs)

	c.JSON(http.StatusOK, model.IngestResponse{
		Status:   "received",
		Parsed:   len(req.Logs),
		Appended: appended,
	})
}

// SeedDemo godoc
// @Summary Seed the demo failure scenario
// @Description Appends a synthetic multi-service incident batch for demos.
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.DemoScenarioResponse
// @Router /api/v1/logs/demo [post]
func (h *LogHandler) SeedDemo(c *gin.Context) {
	appended := h.svc.SeedDemoScenario()
	log.Printf("Seeded demo scenario: appended=%d", appended)

	c.JSON(http.StatusOK, model.DemoScenarioResponse{
		Status:   "success",
		Message:  "Demo failure scenario injected",
		Appended: appended,
	})
}

// List godoc
// @Summary List all log records
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.LogRecord
// @Router /api/v1/logs [get]
func (h *LogHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.logs.Snapshot())
}
