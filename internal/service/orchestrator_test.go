package service

import (
	"testing"
	"time"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

// waitFor - 비동기 시퀀스 완료 폴링 (타임아웃 시 실패)
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func newTestPipeline(correlator Correlator, diag Diagnoser) (*Orchestrator, *IngestService, *store.LogStore, *store.AlertStore) {
	logs := store.NewLogStore()
	alerts := store.NewAlertStore()

	detector := NewDetector(logs, alerts, correlator)
	healer := NewHealer(logs, alerts, diag, time.Millisecond, time.Millisecond)
	orchestrator := NewOrchestrator(alerts, detector, healer)

	ingest := NewIngestService(logs, nil, 10000)
	ingest.SetNotifier(orchestrator.NotifyLogAppended)

	return orchestrator, ingest, logs, alerts
}

func TestOrchestratorEndToEnd(t *testing.T) {
	correlator := &fakeCorrelator{
		drafts: []model.AlertDraft{
			{
				Title:           "Snowflake credit exhaustion",
				Severity:        model.SeverityCritical,
				AffectedService: "Snowflake",
			},
		},
	}
	diag := &fakeDiagnoser{
		diagnosis: model.Diagnosis{
			Narrative: "Warehouse quota exceeded mid-run.",
			Action:    "Raised TRANSFORM_WH credit quota",
			Succeeded: true,
		},
	}

	orchestrator, ingest, logs, alerts := newTestPipeline(correlator, diag)
	orchestrator.Start()
	defer orchestrator.Stop()

	ingest.IngestBatch([]model.LogRecord{
		{Service: "Snowflake", Level: model.LevelCritical, Message: "Statement aborted: credit quota exceeded"},
	})

	waitFor(t, time.Second, func() bool {
		snap := alerts.Snapshot()
		return len(snap) == 1 && snap[0].Status == model.StatusResolved
	}, "alert to resolve")

	// 원본 1건 + SUCCESS 1건
	waitFor(t, time.Second, func() bool { return logs.Len() == 2 }, "success log append")

	alert := alerts.Snapshot()[0]
	if alert.FixAction != diag.diagnosis.Action {
		t.Fatalf("fix action = %q", alert.FixAction)
	}
}

func TestOrchestratorSingleDetectionPerIncident(t *testing.T) {
	correlator := &fakeCorrelator{
		drafts: []model.AlertDraft{{Title: "incident", AffectedService: "Kafka"}},
	}
	// stall시켜서 Alert Store가 비워지지 않도록 유지
	diag := &fakeDiagnoser{
		diagnosis: model.Diagnosis{Narrative: "n", Action: "a", Succeeded: false},
	}

	orchestrator, ingest, _, alerts := newTestPipeline(correlator, diag)
	orchestrator.Start()
	defer orchestrator.Stop()

	ingest.IngestBatch([]model.LogRecord{
		{Service: "Kafka", Level: model.LevelError, Message: "broker down"},
	})

	waitFor(t, time.Second, func() bool { return alerts.Count() == 1 }, "first detection")

	// Alert가 존재하는 동안 새 ERROR 로그는 감지를 다시 열지 않음
	ingest.IngestBatch([]model.LogRecord{
		{Service: "Airflow", Level: model.LevelError, Message: "scheduler heartbeat lost"},
	})
	time.Sleep(50 * time.Millisecond)

	if alerts.Count() != 1 {
		t.Fatalf("detection re-ran while gated: %d alerts", alerts.Count())
	}
}

func TestOrchestratorManualRetrigger(t *testing.T) {
	correlator := &fakeCorrelator{
		drafts: []model.AlertDraft{{Title: "incident", AffectedService: "dbt"}},
	}
	diag := &fakeDiagnoser{
		diagnosis: model.Diagnosis{Narrative: "n", Action: "a", Succeeded: false},
	}

	orchestrator, ingest, _, alerts := newTestPipeline(correlator, diag)
	orchestrator.Start()
	defer orchestrator.Stop()

	ingest.IngestBatch([]model.LogRecord{
		{Service: "dbt", Level: model.LevelError, Message: "model failed"},
	})

	var alertID string
	waitFor(t, time.Second, func() bool {
		snap := alerts.Snapshot()
		if len(snap) != 1 || snap[0].Status != model.StatusHealing {
			return false
		}
		alertID = snap[0].ID
		return snap[0].FixAction != ""
	}, "alert to stall")

	diag.setResult(model.Diagnosis{Narrative: "n2", Action: "a2", Succeeded: true}, nil)

	// in-flight 중 re-trigger는 drop될 수 있으므로 resolve될 때까지 반복 요청
	waitFor(t, time.Second, func() bool {
		alert, _ := alerts.Get(alertID)
		if alert.Status == model.StatusResolved {
			return true
		}
		_ = orchestrator.RequestHeal(alertID)
		return false
	}, "alert to resolve after retrigger")
}

func TestOrchestratorRequestHealValidation(t *testing.T) {
	correlator := &fakeCorrelator{}
	diag := &fakeDiagnoser{}
	orchestrator, _, _, alerts := newTestPipeline(correlator, diag)
	orchestrator.Start()
	defer orchestrator.Stop()

	if err := orchestrator.RequestHeal("missing"); err == nil {
		t.Fatalf("expected error for unknown alert")
	}

	resolved := model.Alert{ID: "alert-1", Status: model.StatusActive}
	if err := alerts.Insert(resolved); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := alerts.SetStatus("alert-1", model.StatusHealing); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if _, err := alerts.SetStatus("alert-1", model.StatusResolved); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	if err := orchestrator.RequestHeal("alert-1"); err == nil {
		t.Fatalf("expected error for resolved alert")
	}
}
