// 외부 Slack API와 통신하는 알림 클라이언트 정의
//
// 환경변수:
//   - SLACK_BOT_TOKEN: Slack Bot Token (xoxb-...)
//   - SLACK_CHANNEL_ID: Slack 채널 ID (C...)
//
// Webhook 대신 Bot Token을 사용하는 이유:
//   - thread_ts 반환: Alert 생성 메시지의 timestamp를 받아 쓰레드 관리 가능
//   - 이후 resolved/stall 알림을 같은 쓰레드로 전송 가능

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/model"
)

type SlackClient struct {
	botToken   string
	channelID  string
	httpClient *http.Client

	// threadMap: alert ID -> thread_ts 매핑
	// sync.Map 사용 이유: 여러 Alert의 healing이 동시에 진행될 수 있음
	threadMap sync.Map
}

type SlackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
}

type SlackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// NotifyAlertCreated - 새 Alert 생성 알림 (쓰레드 시작점)
func (c *SlackClient) NotifyAlertCreated(alert model.Alert) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}

	msg := SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color: severityColor(alert.Severity),
				Title: fmt.Sprintf("🚨 %s", alert.Title),
				Text:  alert.Description,
				Ts:    alert.Timestamp.Unix(),
				Fields: []SlackField{
					{Title: "Service", Value: alert.AffectedService, Short: true},
					{Title: "Severity", Value: string(alert.Severity), Short: true},
					{Title: "Alert ID", Value: alert.ID, Short: false},
				},
			},
		},
	}

	resp, err := c.send(msg)
	if err != nil {
		return err
	}
	if resp.TS != "" {
		c.threadMap.Store(alert.ID, resp.TS)
	}
	return nil
}

// NotifyAlertResolved - 자동 복구 완료 알림 (생성 메시지 쓰레드에 연결)
func (c *SlackClient) NotifyAlertResolved(alert model.Alert) error {
	return c.sendToThread(alert.ID, SlackAttachment{
		Color: "#36a64f",
		Title: "✅ Auto-remediation complete",
		Text:  fmt.Sprintf("*%s*\nAction: %s", alert.Title, alert.FixAction),
	})
}

// NotifyAlertStalled - 자동 복구 실패(stall) 알림
func (c *SlackClient) NotifyAlertStalled(alert model.Alert) error {
	return c.sendToThread(alert.ID, SlackAttachment{
		Color: "#dc3545",
		Title: "⚠️ Auto-remediation failed",
		Text:  fmt.Sprintf("*%s*\n%s", alert.Title, alert.FixAction),
	})
}

func (c *SlackClient) sendToThread(alertID string, attachment SlackAttachment) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}

	msg := SlackMessage{
		Channel:     c.channelID,
		Attachments: []SlackAttachment{attachment},
	}
	if val, ok := c.threadMap.Load(alertID); ok {
		msg.ThreadTS = val.(string)
	}

	_, err := c.send(msg)
	return err
}

// Slack API 호출
func (c *SlackClient) send(msg SlackMessage) (*SlackResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequest("POST", "https://slack.com/api/chat.postMessage", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !slackResp.OK {
		return nil, fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return &slackResp, nil
}

// severityColor - Alert 심각도별 attachment 색상
//   - critical/high: #dc3545 (빨강)
//   - medium: #ffc107 (노랑)
//   - low: #439fe0 (파랑)
func severityColor(severity model.AlertSeverity) string {
	switch severity {
	case model.SeverityCritical, model.SeverityHigh:
		return "#dc3545"
	case model.SeverityMedium:
		return "#ffc107"
	default:
		return "#439fe0"
	}
}
