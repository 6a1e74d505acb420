// Healing Sequencer - active Alert별 자동 진단/복구 시퀀스
//
// Alert 1건의 시퀀스 (상태 변경은 Alert Store를 통해서만):
//  1. active → healing 즉시 전이
//  2. thinking 대기 (진단 지연 모델링, 다른 Alert 진행을 막지 않음)
//  3. 진단 추론 호출 → narrative를 agent_thoughts에 append, fix_action 기록
//  4. action 대기 (복구 실행 시간 모델링)
//  5. 성공 시 healing → resolved + SUCCESS 로그 append
//     실패 시 healing 상태 유지 (stall, 자동 재시도 없음 - 수동 re-trigger만 가능)
//
// Alert별로 goroutine 1개, in-flight 셋으로 동일 Alert 중복 실행 차단

package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/data-sentry/backend/internal/metrics"
	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
	"github.com/google/uuid"
)

// 진단 추론 실패 시 대체되는 degraded 결과
const (
	FallbackNarrative = "Agent process failed."
	FallbackAction    = "Manual intervention required"
)

// Diagnoser - 진단 추론 서비스 계약 (client.InferenceClient가 구현)
type Diagnoser interface {
	Diagnose(ctx context.Context, alert model.Alert) (model.Diagnosis, error)
}

// AlertNotifier - Alert 라이프사이클 외부 알림 계약 (client.SlackClient가 구현)
type AlertNotifier interface {
	NotifyAlertCreated(alert model.Alert) error
	NotifyAlertResolved(alert model.Alert) error
	NotifyAlertStalled(alert model.Alert) error
}

type Healer struct {
	logs      *store.LogStore
	alerts    *store.AlertStore
	diagnoser Diagnoser

	thinkDelay  time.Duration
	actionDelay time.Duration

	// notifier, onResolved, onLogAppended, publish는 선택 의존성 (nil 허용)
	notifier      AlertNotifier
	onResolved    func(alert model.Alert)
	onLogAppended func(record model.LogRecord)
	publish       func(event model.StreamEvent)

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

func NewHealer(logs *store.LogStore, alerts *store.AlertStore, diagnoser Diagnoser, thinkDelay, actionDelay time.Duration) *Healer {
	return &Healer{
		logs:        logs,
		alerts:      alerts,
		diagnoser:   diagnoser,
		thinkDelay:  thinkDelay,
		actionDelay: actionDelay,
		inFlight:    make(map[string]struct{}),
	}
}

// SetNotifier - Slack 등 외부 알림 연결
func (h *Healer) SetNotifier(notifier AlertNotifier) {
	h.notifier = notifier
}

// SetOnResolved - 해결 후속 처리 연결 (유사 장애 임베딩 인덱싱)
func (h *Healer) SetOnResolved(fn func(alert model.Alert)) {
	h.onResolved = fn
}

// SetOnLogAppended - SUCCESS 로그 append 후속 처리 연결 (아카이브, 이벤트 재평가)
func (h *Healer) SetOnLogAppended(fn func(record model.LogRecord)) {
	h.onLogAppended = fn
}

// SetPublisher - 대시보드 스트림 연결
func (h *Healer) SetPublisher(fn func(event model.StreamEvent)) {
	h.publish = fn
}

// Launch - Alert 1건의 healing 시퀀스 시작
// 같은 Alert의 시퀀스가 이미 진행 중이면 false (중복 실행 차단)
func (h *Healer) Launch(alertID string) bool {
	h.mu.Lock()
	if _, busy := h.inFlight[alertID]; busy {
		h.mu.Unlock()
		return false
	}
	h.inFlight[alertID] = struct{}{}
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			h.mu.Lock()
			delete(h.inFlight, alertID)
			h.mu.Unlock()
		}()
		h.run(alertID)
	}()
	return true
}

// Wait - 진행 중인 모든 시퀀스 완료 대기 (shutdown 및 테스트용)
func (h *Healer) Wait() {
	h.wg.Wait()
}

func (h *Healer) run(alertID string) {
	start := time.Now()

	alert, ok := h.alerts.Get(alertID)
	if !ok {
		log.Printf("Healing skipped: alert not found (alert_id=%s)", alertID)
		return
	}

	// 1. healing 전이
	// 수동 re-trigger로 이미 healing 상태인 경우는 전이 없이 계속 진행
	switch alert.Status {
	case model.StatusActive, model.StatusInvestigating:
		updated, err := h.alerts.SetStatus(alertID, model.StatusHealing)
		if err != nil {
			log.Printf("Failed to start healing: %v", err)
			return
		}
		h.publishAlert(updated)
	case model.StatusHealing:
		// stall된 Alert의 재시도
	default:
		log.Printf("Healing skipped: alert already %s (alert_id=%s)", alert.Status, alertID)
		return
	}

	// 2. thinking 대기 (대시보드에서 "분석 중" 상태로 노출되는 구간)
	time.Sleep(h.thinkDelay)

	// 3. 진단 호출, 실패 시 degraded 기본값으로 대체
	diagnosis := h.diagnose(alertID)

	if _, err := h.alerts.AppendThought(alertID, diagnosis.Narrative); err != nil {
		log.Printf("Failed to append agent thought: %v", err)
	}
	updated, err := h.alerts.SetFixAction(alertID, diagnosis.Action)
	if err != nil {
		log.Printf("Failed to set fix action: %v", err)
	} else {
		h.publishAlert(updated)
	}

	// 4. action 대기
	time.Sleep(h.actionDelay)

	// 5. 성공 → resolved + SUCCESS 로그 / 실패 → healing 유지 (stall)
	if diagnosis.Succeeded {
		h.resolve(alertID, start)
	} else {
		h.stall(alertID, start)
	}
}

func (h *Healer) diagnose(alertID string) model.Diagnosis {
	alert, ok := h.alerts.Get(alertID)
	if !ok {
		return model.Diagnosis{Narrative: FallbackNarrative, Action: FallbackAction}
	}

	// 추론 서비스 미설정(degraded 모드) 시 진단 없이 fallback
	if h.diagnoser == nil {
		return model.Diagnosis{Narrative: FallbackNarrative, Action: FallbackAction}
	}

	diagnosis, err := h.diagnoser.Diagnose(context.Background(), alert)
	if err != nil {
		log.Printf("Diagnosis inference failed (alert_id=%s): %v", alertID, err)
		return model.Diagnosis{Narrative: FallbackNarrative, Action: FallbackAction}
	}
	return diagnosis
}

func (h *Healer) resolve(alertID string, start time.Time) {
	resolved, err := h.alerts.SetStatus(alertID, model.StatusResolved)
	if err != nil {
		log.Printf("Failed to resolve alert: %v", err)
		return
	}

	// 복구 완료 로그를 Log Store에 append (Alert 제목과 조치 내용 참조)
	record := model.LogRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Service:   resolved.AffectedService,
		Level:     model.LevelSuccess,
		Message:   "Auto-remediation complete for \"" + resolved.Title + "\": " + resolved.FixAction,
	}
	h.logs.Append(record)
	metrics.CountLogIngested(string(record.Level))

	metrics.ObserveHealing(time.Since(start), metrics.OutcomeResolved)
	log.Printf("Alert resolved (alert_id=%s, action=%q)", alertID, resolved.FixAction)

	h.publishAlert(resolved)
	if h.publish != nil {
		h.publish(model.StreamEvent{Type: model.EventLogAppended, Log: &record})
	}
	if h.onLogAppended != nil {
		h.onLogAppended(record)
	}
	if h.onResolved != nil {
		h.onResolved(resolved)
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyAlertResolved(resolved); err != nil {
			log.Printf("Failed to send resolved notification: %v", err)
		}
	}
}

func (h *Healer) stall(alertID string, start time.Time) {
	metrics.ObserveHealing(time.Since(start), metrics.OutcomeStalled)
	log.Printf("Alert stalled in healing, manual intervention required (alert_id=%s)", alertID)

	stalled, ok := h.alerts.Get(alertID)
	if !ok {
		return
	}
	h.publishAlert(stalled)
	if h.notifier != nil {
		if err := h.notifier.NotifyAlertStalled(stalled); err != nil {
			log.Printf("Failed to send stall notification: %v", err)
		}
	}
}

func (h *Healer) publishAlert(alert model.Alert) {
	if h.publish != nil {
		h.publish(model.StreamEvent{Type: model.EventAlertUpdated, Alert: &alert})
	}
}
