package client

import (
	"testing"

	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/model"
)

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity model.AlertSeverity
		want     string
	}{
		{severity: model.SeverityCritical, want: "#dc3545"},
		{severity: model.SeverityHigh, want: "#dc3545"},
		{severity: model.SeverityMedium, want: "#ffc107"},
		{severity: model.SeverityLow, want: "#439fe0"},
	}

	for _, tt := range tests {
		if got := severityColor(tt.severity); got != tt.want {
			t.Fatalf("severityColor(%s) = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

func TestSlackClientNotConfigured(t *testing.T) {
	c := NewSlackClient(config.SlackConfig{})
	if c.IsConfigured() {
		t.Fatalf("expected unconfigured client")
	}
	if err := c.NotifyAlertCreated(model.Alert{ID: "alert-1"}); err == nil {
		t.Fatalf("expected error when not configured")
	}
}
