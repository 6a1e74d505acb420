// Alert Store - Alert ID → Alert 매핑 및 라이프사이클 상태 추적
//
// 불변 조건:
//   - Alert ID는 생성 이후 불변
//   - 상태 전이는 전방향만 허용 (model.AlertStatus.CanTransitionTo)
//   - 모든 변경은 레코드 전체 교체 (읽는 쪽은 절대 중간 상태를 보지 못함)

package store

import (
	"fmt"
	"sync"

	"github.com/data-sentry/backend/internal/model"
)

type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]model.Alert

	// order: 생성 순서 (Snapshot 출력 순서 고정용)
	order []string
}

func NewAlertStore() *AlertStore {
	return &AlertStore{
		alerts: make(map[string]model.Alert),
	}
}

// Insert - Detector가 구체화한 Alert 저장
// active 상태가 아니거나 ID가 중복이면 거부
func (s *AlertStore) Insert(alert model.Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("alert id is empty")
	}
	if alert.Status != model.StatusActive {
		return fmt.Errorf("alert %s must be created as active, got %s", alert.ID, alert.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.alerts[alert.ID]; exists {
		return fmt.Errorf("alert %s already exists", alert.ID)
	}
	s.alerts[alert.ID] = cloneAlert(alert)
	s.order = append(s.order, alert.ID)
	return nil
}

// Get - Alert 복사본 조회
func (s *AlertStore) Get(id string) (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, false
	}
	return cloneAlert(alert), true
}

// Snapshot - 생성 순서대로 전체 복사본 반환
func (s *AlertStore) Snapshot() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneAlert(s.alerts[id]))
	}
	return out
}

func (s *AlertStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// SetStatus - 상태 전이 (전방향 검증 포함), 갱신된 복사본 반환
func (s *AlertStore) SetStatus(id string, next model.AlertStatus) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("alert %s not found", id)
	}
	if !alert.Status.CanTransitionTo(next) {
		return model.Alert{}, fmt.Errorf("invalid transition for alert %s: %s → %s", id, alert.Status, next)
	}
	alert.Status = next
	s.alerts[id] = alert
	return cloneAlert(alert), nil
}

// AppendThought - 진단 내러티브 추가
func (s *AlertStore) AppendThought(id, thought string) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("alert %s not found", id)
	}
	thoughts := make([]string, 0, len(alert.AgentThoughts)+1)
	thoughts = append(thoughts, alert.AgentThoughts...)
	alert.AgentThoughts = append(thoughts, thought)
	s.alerts[id] = alert
	return cloneAlert(alert), nil
}

// SetFixAction - 복구 조치 기록
func (s *AlertStore) SetFixAction(id, action string) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, fmt.Errorf("alert %s not found", id)
	}
	alert.FixAction = action
	s.alerts[id] = alert
	return cloneAlert(alert), nil
}

// cloneAlert - 슬라이스 필드까지 복사 (내부 상태 공유 방지)
func cloneAlert(alert model.Alert) model.Alert {
	if alert.AgentThoughts != nil {
		thoughts := make([]string, len(alert.AgentThoughts))
		copy(thoughts, alert.AgentThoughts)
		alert.AgentThoughts = thoughts
	}
	if alert.RelatedLogIDs != nil {
		ids := make([]string, len(alert.RelatedLogIDs))
		copy(ids, alert.RelatedLogIDs)
		alert.RelatedLogIDs = ids
	}
	return alert
}
