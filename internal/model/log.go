// 로그 레코드 및 로그 레벨 구조체를 정의
// store, service, client, handler 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import "time"

// LogLevel - 로그 심각도 레벨
type LogLevel string

const (
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"

	// LevelSuccess: 자동 복구(Healing) 완료 시 Sequencer가 직접 추가하는 레벨
	LevelSuccess LogLevel = "SUCCESS"
)

// IsProblem - 상관관계 분석 대상 레벨인지 여부 (WARNING 이상)
// INFO/SUCCESS는 추론 서비스에 전달하지 않음 (payload 크기 및 노이즈 제어)
func (l LogLevel) IsProblem() bool {
	return l == LevelWarning || l == LevelError || l == LevelCritical
}

// IsIncidentTrigger - 감지 게이트를 여는 레벨인지 여부 (ERROR 이상)
func (l LogLevel) IsIncidentTrigger() bool {
	return l == LevelError || l == LevelCritical
}

// LogRecord - 개별 로그 레코드
// 생성 이후 불변이며 Log Store에는 append만 가능 (수정/삭제 없음)
type LogRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Service: 로그를 발생시킨 데이터 플랫폼 서비스 이름 (예: "Snowflake", "Kafka", "Airflow")
	Service string   `json:"service"`
	Level   LogLevel `json:"level"`
	Message string   `json:"message"`

	// Raw: 파싱 전 원본 텍스트 라인 (파서를 거치지 않은 합성 배치는 비어 있음)
	Raw string `json:"raw,omitempty"`
}

type IngestRequest struct {
	Text string `json:"text"`
}

type BatchIngestRequest struct {
	Logs []LogRecord `json:"logs"`
}
