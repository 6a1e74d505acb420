// Alert(상관관계로 묶인 장애 단위) 및 라이프사이클 상태를 정의
// Incident Detector가 생성하고 Healing Sequencer만 상태를 변경

package model

import "time"

// AlertSeverity - Alert 심각도
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// AlertStatus - Alert 라이프사이클 상태
// 전이는 전방향만 허용: active → healing → resolved
// investigating은 수동 triage 예약 상태 (자동 전이 대상 아님)
type AlertStatus string

const (
	StatusActive        AlertStatus = "active"
	StatusInvestigating AlertStatus = "investigating"
	StatusHealing       AlertStatus = "healing"
	StatusResolved      AlertStatus = "resolved"
)

// CanTransitionTo - 상태 전이 허용 여부
// resolved는 터미널 상태이므로 이후 어떤 변경도 불가
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	switch s {
	case StatusActive:
		return next == StatusInvestigating || next == StatusHealing
	case StatusInvestigating:
		return next == StatusHealing
	case StatusHealing:
		return next == StatusResolved
	default:
		return false
	}
}

// Alert - 개별 Alert
// AgentThoughts에는 진단 에이전트의 분석 내러티브가 순서대로 쌓임
type Alert struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    AlertSeverity `json:"severity"`
	Status      AlertStatus   `json:"status"`

	// AffectedService: 장애 중심 서비스 (related_log_ids가 비어 있을 때 필터 폴백 기준)
	AffectedService string    `json:"affected_service"`
	Timestamp       time.Time `json:"timestamp"`

	AgentThoughts []string `json:"agent_thoughts"`

	// FixAction: 진단 에이전트가 제안(시도)한 복구 조치. 진단 전에는 빈 문자열
	FixAction string `json:"fix_action,omitempty"`

	// RelatedLogIDs: Alert 생성 시점에 Log Store에 존재하던 로그 ID만 참조 가능
	RelatedLogIDs []string `json:"related_log_ids"`
}

// AlertDraft - Correlation 추론 서비스가 제안하는 Alert 초안
// Detector가 ID/상태/타임스탬프를 부여해 Alert로 구체화함
type AlertDraft struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Severity        AlertSeverity `json:"severity"`
	AffectedService string        `json:"affected_service"`
	SuggestedFix    string        `json:"suggested_fix"`
	RelatedLogIDs   []string      `json:"related_log_ids"`
}

// Diagnosis - 진단 추론 서비스의 응답
type Diagnosis struct {
	// Narrative: 루트 원인 분석 내러티브 (agent_thoughts에 append됨)
	Narrative string `json:"narrative"`

	// Action: 시도한/제안한 복구 조치
	Action string `json:"action"`

	// Succeeded: false면 Alert는 healing 상태에서 stall (자동 재시도 없음)
	Succeeded bool `json:"succeeded"`
}
