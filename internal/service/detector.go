// Incident Detector - Log Store 감시 및 Alert 구체화 비즈니스 로직
//
// 처리 흐름:
//  1. 감지 게이트 평가: ERROR/CRITICAL 로그 존재 + Alert Store 비어 있음
//     (one-shot 게이트: Alert가 하나라도 존재하면 재감지하지 않음)
//  2. WARNING 이상 레코드만 추려 Correlation 추론 서비스에 전달
//  3. 반환된 초안에 ID/상태/타임스탬프 부여 후 Alert Store에 저장
//  4. 추론 실패 또는 대상 없음 → Alert 0건, store 변경 없음 (정상 케이스)

package service

import (
	"context"
	"log"
	"time"

	"github.com/data-sentry/backend/internal/metrics"
	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
	"github.com/google/uuid"
)

// Correlator - Correlation 추론 서비스 계약 (client.InferenceClient가 구현)
type Correlator interface {
	ProposeAlerts(ctx context.Context, records []model.LogRecord) ([]model.AlertDraft, error)
}

type Detector struct {
	logs       *store.LogStore
	alerts     *store.AlertStore
	correlator Correlator
}

func NewDetector(logs *store.LogStore, alerts *store.AlertStore, correlator Correlator) *Detector {
	return &Detector{
		logs:       logs,
		alerts:     alerts,
		correlator: correlator,
	}
}

// Detect - 감지 게이트를 평가하고 새 Alert를 구체화하여 반환
// 게이트가 닫혀 있거나 추론이 실패하면 nil (에러가 아님)
func (d *Detector) Detect(ctx context.Context) []model.Alert {
	// 추론 서비스 미설정(degraded 모드) 시 감지 비활성
	if d.correlator == nil {
		return nil
	}

	// one-shot 게이트: Alert가 존재하는 동안 감지 중단
	if d.alerts.Count() > 0 {
		return nil
	}

	snapshot := d.logs.Snapshot()

	hasTrigger := false
	var problems []model.LogRecord
	for _, record := range snapshot {
		if record.Level.IsIncidentTrigger() {
			hasTrigger = true
		}
		if record.Level.IsProblem() {
			problems = append(problems, record)
		}
	}
	if !hasTrigger || len(problems) == 0 {
		return nil
	}

	drafts, err := d.correlator.ProposeAlerts(ctx, problems)
	if err != nil {
		// 추론 실패는 조용한 degradation (다음 로그 append 때 재평가됨)
		log.Printf("Correlation inference failed: %v", err)
		return nil
	}
	if len(drafts) == 0 {
		return nil
	}

	created := make([]model.Alert, 0, len(drafts))
	for _, draft := range drafts {
		alert := d.materialize(draft)
		if err := d.alerts.Insert(alert); err != nil {
			log.Printf("Failed to insert alert: %v", err)
			continue
		}
		metrics.CountAlertCreated()
		log.Printf("Created alert (alert_id=%s, service=%s, severity=%s)", alert.ID, alert.AffectedService, alert.Severity)
		created = append(created, alert)
	}
	return created
}

// materialize - 초안을 Alert로 구체화
// related_log_ids는 이 시점의 Log Store에 실재하는 ID만 유지 (forward reference 금지)
func (d *Detector) materialize(draft model.AlertDraft) model.Alert {
	var relatedIDs []string
	for _, id := range draft.RelatedLogIDs {
		if d.logs.ContainsID(id) {
			relatedIDs = append(relatedIDs, id)
		} else {
			log.Printf("Dropping unknown related log id %s from draft %q", id, draft.Title)
		}
	}

	severity := draft.Severity
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		severity = model.SeverityMedium
	}

	return model.Alert{
		ID:              uuid.NewString(),
		Title:           draft.Title,
		Description:     draft.Description,
		Severity:        severity,
		Status:          model.StatusActive,
		AffectedService: draft.AffectedService,
		Timestamp:       time.Now(),
		AgentThoughts:   []string{},
		RelatedLogIDs:   relatedIDs,
	}
}
