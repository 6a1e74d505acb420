package store

import (
	"testing"
	"time"

	"github.com/data-sentry/backend/internal/model"
)

func activeAlert(id string) model.Alert {
	return model.Alert{
		ID:              id,
		Title:           "Kafka consumer lag spike",
		Severity:        model.SeverityHigh,
		Status:          model.StatusActive,
		AffectedService: "Kafka",
		Timestamp:       time.Now(),
		AgentThoughts:   []string{},
	}
}

func TestAlertStoreInsert(t *testing.T) {
	s := NewAlertStore()
	if err := s.Insert(activeAlert("alert-1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.Insert(activeAlert("alert-1")); err == nil {
		t.Fatalf("duplicate insert should fail")
	}

	resolved := activeAlert("alert-2")
	resolved.Status = model.StatusResolved
	if err := s.Insert(resolved); err == nil {
		t.Fatalf("insert of non-active alert should fail")
	}

	if s.Count() != 1 {
		t.Fatalf("expected 1 alert, got %d", s.Count())
	}
}

func TestAlertStoreForwardOnlyTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []model.AlertStatus
		ok   bool
	}{
		{name: "active-healing-resolved", path: []model.AlertStatus{model.StatusHealing, model.StatusResolved}, ok: true},
		{name: "active-investigating-healing", path: []model.AlertStatus{model.StatusInvestigating, model.StatusHealing}, ok: true},
		{name: "skip-to-resolved", path: []model.AlertStatus{model.StatusResolved}, ok: false},
		{name: "backward-from-healing", path: []model.AlertStatus{model.StatusHealing, model.StatusActive}, ok: false},
		{name: "mutate-after-resolved", path: []model.AlertStatus{model.StatusHealing, model.StatusResolved, model.StatusHealing}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAlertStore()
			if err := s.Insert(activeAlert("alert-1")); err != nil {
				t.Fatalf("insert failed: %v", err)
			}

			var lastErr error
			for _, next := range tt.path {
				_, lastErr = s.SetStatus("alert-1", next)
				if lastErr != nil {
					break
				}
			}

			if tt.ok && lastErr != nil {
				t.Fatalf("expected path to succeed, got %v", lastErr)
			}
			if !tt.ok && lastErr == nil {
				t.Fatalf("expected path to be rejected")
			}
		})
	}
}

func TestAlertStoreAppendThought(t *testing.T) {
	s := NewAlertStore()
	if err := s.Insert(activeAlert("alert-1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	updated, err := s.AppendThought("alert-1", "first analysis")
	if err != nil {
		t.Fatalf("append thought failed: %v", err)
	}
	if len(updated.AgentThoughts) != 1 || updated.AgentThoughts[0] != "first analysis" {
		t.Fatalf("unexpected thoughts: %v", updated.AgentThoughts)
	}

	// 반환된 복사본 변경이 store에 새어 들어가면 안 됨
	updated.AgentThoughts[0] = "mutated"
	stored, _ := s.Get("alert-1")
	if stored.AgentThoughts[0] != "first analysis" {
		t.Fatalf("returned copy shares state with store")
	}
}

func TestAlertStoreSnapshotOrder(t *testing.T) {
	s := NewAlertStore()
	for _, id := range []string{"alert-3", "alert-1", "alert-2"} {
		if err := s.Insert(activeAlert(id)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	snap := s.Snapshot()
	for i, want := range []string{"alert-3", "alert-1", "alert-2"} {
		if snap[i].ID != want {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].ID, want)
		}
	}
}
