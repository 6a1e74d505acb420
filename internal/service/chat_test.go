package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

type fakeChatModel struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeChatModel) Chat(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.answer, f.err
}

func TestChatWithoutAlertContext(t *testing.T) {
	chatModel := &fakeChatModel{answer: "Check the warehouse credit quota."}
	svc := NewChatService(store.NewAlertStore(), chatModel)

	resp, err := svc.Chat(context.Background(), model.ChatRequest{Message: "Why did the rollup fail?"})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.Answer != chatModel.answer || resp.ContextUsed != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if chatModel.lastPrompt != "Why did the rollup fail?" {
		t.Fatalf("prompt must pass through unchanged, got %q", chatModel.lastPrompt)
	}
}

func TestChatWithAlertContext(t *testing.T) {
	alerts := store.NewAlertStore()
	alert := model.Alert{
		ID:              "alert-1",
		Title:           "Snowflake credit exhaustion",
		Severity:        model.SeverityCritical,
		Status:          model.StatusActive,
		AffectedService: "Snowflake",
		AgentThoughts:   []string{"Quota exceeded mid-run."},
		FixAction:       "Raised TRANSFORM_WH quota",
	}
	if err := alerts.Insert(alert); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	chatModel := &fakeChatModel{answer: "The warehouse ran out of credits."}
	svc := NewChatService(alerts, chatModel)

	resp, err := svc.Chat(context.Background(), model.ChatRequest{
		Message: "What happened here?",
		AlertID: "alert-1",
	})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.ContextUsed == nil || resp.ContextUsed.AlertID != "alert-1" {
		t.Fatalf("alert context missing: %+v", resp.ContextUsed)
	}
	for _, want := range []string{alert.Title, alert.AffectedService, alert.FixAction, "What happened here?"} {
		if !strings.Contains(chatModel.lastPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, chatModel.lastPrompt)
		}
	}
}

func TestChatValidation(t *testing.T) {
	svc := NewChatService(store.NewAlertStore(), &fakeChatModel{})

	if _, err := svc.Chat(context.Background(), model.ChatRequest{Message: "  "}); !errors.Is(err, ErrInvalidChatRequest) {
		t.Fatalf("empty message: err = %v", err)
	}
	if _, err := svc.Chat(context.Background(), model.ChatRequest{Message: "hi", AlertID: "missing"}); !errors.Is(err, ErrInvalidChatRequest) {
		t.Fatalf("unknown alert: err = %v", err)
	}
}

func TestChatModelFailurePropagates(t *testing.T) {
	chatModel := &fakeChatModel{err: errors.New("quota exceeded")}
	svc := NewChatService(store.NewAlertStore(), chatModel)

	if _, err := svc.Chat(context.Background(), model.ChatRequest{Message: "hi"}); err == nil {
		t.Fatalf("expected model error to propagate")
	}
}
