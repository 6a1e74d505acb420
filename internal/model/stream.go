package model

// 대시보드 실시간 스트림용 이벤트 타입
const (
	EventLogAppended  = "log_appended"
	EventAlertCreated = "alert_created"
	EventAlertUpdated = "alert_updated"
)

// StreamEvent - 웹소켓으로 내보내는 상태 변경 이벤트
// Log/Alert 중 이벤트 타입에 해당하는 쪽만 채워짐
type StreamEvent struct {
	Type  string     `json:"type"`
	Log   *LogRecord `json:"log,omitempty"`
	Alert *Alert     `json:"alert,omitempty"`
}
