package handler

import (
	"errors"
	"net/http"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat godoc
// @Summary Ask the assistant about the system or a specific alert
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChatRequest true "Question and optional alert context"
// @Success 200 {object} model.ChatResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.svc.Chat(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidChatRequest) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
