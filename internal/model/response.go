package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AuthLogoutResponse struct {
	Status string `json:"status"`
}

type AuthMeResponse struct {
	UserID  int64  `json:"userId"`
	LoginID string `json:"loginId"`
}

type IngestResponse struct {
	Status   string `json:"status"`
	Parsed   int    `json:"parsed"`
	Appended int    `json:"appended"`
}

type AlertDetailEnvelope struct {
	Status string `json:"status"`
	Data   *Alert `json:"data"`
}

type HealTriggerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	AlertID string `json:"alert_id"`
}

type DemoScenarioResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Appended int    `json:"appended"`
}

type SimilarResolution struct {
	AlertID   string  `json:"alert_id"`
	Title     string  `json:"title"`
	FixAction string  `json:"fix_action"`
	Distance  float64 `json:"distance"`
}
