// Alert 컨텍스트 기반 대화 비즈니스 로직 정의
// 프레젠테이션 레이어의 chat transcript에서 호출됨

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

var ErrInvalidChatRequest = errors.New("invalid chat request")

// ChatModel - 자유 질의 응답 계약 (client.InferenceClient가 구현)
type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

type ChatService struct {
	alerts *store.AlertStore
	model  ChatModel
}

func NewChatService(alerts *store.AlertStore, chatModel ChatModel) *ChatService {
	return &ChatService{
		alerts: alerts,
		model:  chatModel,
	}
}

func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.AlertID = strings.TrimSpace(req.AlertID)

	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidChatRequest)
	}
	if s.model == nil {
		return nil, errors.New("chat model is not configured")
	}

	var contextUsed *model.AlertChatContext
	prompt := req.Message

	if req.AlertID != "" {
		alert, ok := s.alerts.Get(req.AlertID)
		if !ok {
			return nil, fmt.Errorf("%w: alert %s not found", ErrInvalidChatRequest, req.AlertID)
		}

		contextUsed = &model.AlertChatContext{
			AlertID:   alert.ID,
			Title:     alert.Title,
			Severity:  string(alert.Severity),
			Status:    string(alert.Status),
			FixAction: alert.FixAction,
		}

		prompt = buildChatPrompt(alert, req.Message)
	}

	answer, err := s.model.Chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &model.ChatResponse{
		Status:      "success",
		Answer:      answer,
		ContextUsed: contextUsed,
	}, nil
}

func buildChatPrompt(alert model.Alert, message string) string {
	var b strings.Builder
	b.WriteString("You are an SRE assistant for a data platform. Answer the user's question about the alert below.\n\n")
	b.WriteString("Alert: " + alert.Title + "\n")
	b.WriteString("Service: " + alert.AffectedService + "\n")
	b.WriteString("Severity: " + string(alert.Severity) + "\n")
	b.WriteString("Status: " + string(alert.Status) + "\n")
	if alert.Description != "" {
		b.WriteString("Description: " + alert.Description + "\n")
	}
	for _, thought := range alert.AgentThoughts {
		b.WriteString("Agent analysis: " + thought + "\n")
	}
	if alert.FixAction != "" {
		b.WriteString("Remediation: " + alert.FixAction + "\n")
	}
	b.WriteString("\nQuestion: " + message)
	return b.String()
}
