package client

import (
	"testing"

	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/model"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain-json",
			input: `[{"service":"Kafka"}]`,
			want:  `[{"service":"Kafka"}]`,
		},
		{
			name:  "json-fence",
			input: "```json\n[{\"service\":\"Kafka\"}]\n```",
			want:  `[{"service":"Kafka"}]`,
		},
		{
			name:  "bare-fence",
			input: "```\n{\"narrative\":\"ok\"}\n```",
			want:  `{"narrative":"ok"}`,
		},
		{
			name:  "surrounding-whitespace",
			input: "  \n```json\n[]\n```\n  ",
			want:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Fatalf("stripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		input string
		want  model.LogLevel
	}{
		{input: "error", want: model.LevelError},
		{input: " WARN ", want: model.LevelWarning},
		{input: "warning", want: model.LevelWarning},
		{input: "FATAL", want: model.LevelCritical},
		{input: "critical", want: model.LevelCritical},
		{input: "success", want: model.LevelSuccess},
		{input: "debug", want: model.LevelInfo},
		{input: "", want: model.LevelInfo},
	}

	for _, tt := range tests {
		if got := normalizeLevel(tt.input); got != tt.want {
			t.Fatalf("normalizeLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestNewInferenceClientRequiresKey(t *testing.T) {
	_, err := NewInferenceClient(config.AIConfig{Model: "gemini-2.0-flash"})
	if err == nil {
		t.Fatalf("expected error without API key")
	}
}
