package model

type ChatRequest struct {
	Message string `json:"message"`

	// AlertID가 있으면 해당 Alert의 진단 내용을 컨텍스트로 포함
	AlertID string `json:"alert_id"`
}

type AlertChatContext struct {
	AlertID   string `json:"alert_id"`
	Title     string `json:"title"`
	Severity  string `json:"severity"`
	Status    string `json:"status"`
	FixAction string `json:"fix_action,omitempty"`
}

type ChatResponse struct {
	Status      string            `json:"status"`
	Answer      string            `json:"answer"`
	ContextUsed *AlertChatContext `json:"context_used,omitempty"`
}
