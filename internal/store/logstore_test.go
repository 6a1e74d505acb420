package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/data-sentry/backend/internal/model"
)

func record(id, service string, level model.LogLevel) model.LogRecord {
	return model.LogRecord{
		ID:        id,
		Timestamp: time.Now(),
		Service:   service,
		Level:     level,
		Message:   "msg " + id,
	}
}

func TestLogStoreAppendOrder(t *testing.T) {
	s := NewLogStore()
	s.Append(record("log-1", "Kafka", model.LevelInfo))
	s.AppendBatch([]model.LogRecord{
		record("log-2", "Snowflake", model.LevelWarning),
		record("log-3", "Kafka", model.LevelError),
	})

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap))
	}
	for i, want := range []string{"log-1", "log-2", "log-3"} {
		if snap[i].ID != want {
			t.Fatalf("record %d = %s, want %s", i, snap[i].ID, want)
		}
	}
}

func TestLogStoreMonotonicLength(t *testing.T) {
	s := NewLogStore()
	prev := 0
	for i := 0; i < 20; i++ {
		s.Append(record(fmt.Sprintf("log-%d", i), "dbt", model.LevelInfo))
		if s.Len() <= prev {
			t.Fatalf("length did not grow: %d -> %d", prev, s.Len())
		}
		prev = s.Len()
	}
}

func TestLogStoreHasIncidentTrigger(t *testing.T) {
	tests := []struct {
		name   string
		levels []model.LogLevel
		want   bool
	}{
		{name: "info-only", levels: []model.LogLevel{model.LevelInfo, model.LevelInfo}, want: false},
		{name: "warning-only", levels: []model.LogLevel{model.LevelWarning}, want: false},
		{name: "error", levels: []model.LogLevel{model.LevelInfo, model.LevelError}, want: true},
		{name: "critical", levels: []model.LogLevel{model.LevelCritical}, want: true},
		{name: "success-only", levels: []model.LogLevel{model.LevelSuccess}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLogStore()
			for i, level := range tt.levels {
				s.Append(record(fmt.Sprintf("log-%d", i), "Kafka", level))
			}
			if got := s.HasIncidentTrigger(); got != tt.want {
				t.Fatalf("HasIncidentTrigger() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogStoreSnapshotIsCopy(t *testing.T) {
	s := NewLogStore()
	s.Append(record("log-1", "Kafka", model.LevelInfo))

	snap := s.Snapshot()
	snap[0].Message = "mutated"

	if s.Snapshot()[0].Message == "mutated" {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestLogStoreConcurrentAppend(t *testing.T) {
	s := NewLogStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Append(record(fmt.Sprintf("log-%d-%d", w, i), "Airflow", model.LevelInfo))
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != 400 {
		t.Fatalf("expected 400 records, got %d", s.Len())
	}
}
