// Gemini 추론 클라이언트 정의
// 세 가지 collaborator 계약을 모두 이 클라이언트가 담당:
//   - ParseLogs: 비정형 텍스트 → 구조화된 로그 레코드
//   - ProposeAlerts: 문제 로그 배치 → Alert 초안 (related_log_ids 포함)
//   - Diagnose: Alert 1건 → 루트 원인 내러티브 + 복구 조치
//
// 환경변수:
//   - AI_API_KEY: Gemini API 키
//   - GENAI_MODEL: 텍스트 추론 모델 (default: gemini-2.0-flash)
//
// 모든 실패(네트워크, 파싱 불가 응답)는 error로 반환하고,
// degraded 기본값으로의 변환은 service 레이어가 담당

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/model"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

type InferenceClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func NewInferenceClient(cfg config.AIConfig) (*InferenceClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &InferenceClient{
		client:         client,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// parsedLogLine - ParseLogs 응답 디코딩용 구조체
type parsedLogLine struct {
	Service string `json:"service"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Raw     string `json:"raw"`
}

// ParseLogs - 원본 텍스트를 구조화된 로그 레코드로 변환
// ID와 타임스탬프는 모델 응답에 없으므로 여기서 부여
func (c *InferenceClient) ParseLogs(ctx context.Context, text string) ([]model.LogRecord, error) {
	prompt := fmt.Sprintf(`You convert raw operational log text from data-platform services into structured records.
Return ONLY a JSON array. Each element: {"service": string, "level": "INFO"|"WARNING"|"ERROR"|"CRITICAL", "message": string, "raw": string}.
"raw" is the original line. If a line cannot be parsed, skip it.

Log text:
%s`, text)

	raw, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var lines []parsedLogLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("failed to parse log records: %w", err)
	}

	now := time.Now()
	records := make([]model.LogRecord, 0, len(lines))
	for _, line := range lines {
		records = append(records, model.LogRecord{
			ID:        uuid.NewString(),
			Timestamp: now,
			Service:   line.Service,
			Level:     normalizeLevel(line.Level),
			Message:   line.Message,
			Raw:       line.Raw,
		})
	}
	return records, nil
}

// ProposeAlerts - 문제 로그 배치에서 상관관계 Alert 초안 제안
func (c *InferenceClient) ProposeAlerts(ctx context.Context, records []model.LogRecord) ([]model.AlertDraft, error) {
	if len(records) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log records: %w", err)
	}

	prompt := fmt.Sprintf(`You are an incident correlation engine for a data platform.
Group the problematic log records below into actionable alerts. Related records (same failure, cascading failures across services) belong to one alert.
Return ONLY a JSON array. Each element:
{"title": string, "description": string, "severity": "low"|"medium"|"high"|"critical", "affected_service": string, "suggested_fix": string, "related_log_ids": [string]}.
"related_log_ids" must only contain "id" values present in the input.

Log records:
%s`, payload)

	raw, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var drafts []model.AlertDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse alert drafts: %w", err)
	}
	return drafts, nil
}

// Diagnose - Alert 1건에 대한 루트 원인 분석 및 복구 조치 제안
func (c *InferenceClient) Diagnose(ctx context.Context, alert model.Alert) (model.Diagnosis, error) {
	payload, err := json.Marshal(alert)
	if err != nil {
		return model.Diagnosis{}, fmt.Errorf("failed to marshal alert: %w", err)
	}

	prompt := fmt.Sprintf(`You are an autonomous SRE agent diagnosing a data-platform alert.
Analyze the alert below, determine the likely root cause, and decide on one remediation action.
Return ONLY a JSON object: {"narrative": string, "action": string, "succeeded": bool}.
"narrative" is your root-cause analysis. "action" is the remediation you applied. "succeeded" is whether the remediation can be applied automatically.

Alert:
%s`, payload)

	raw, err := c.generateJSON(ctx, prompt)
	if err != nil {
		return model.Diagnosis{}, err
	}

	var diagnosis model.Diagnosis
	if err := json.Unmarshal([]byte(raw), &diagnosis); err != nil {
		return model.Diagnosis{}, fmt.Errorf("failed to parse diagnosis: %w", err)
	}
	if strings.TrimSpace(diagnosis.Narrative) == "" || strings.TrimSpace(diagnosis.Action) == "" {
		return model.Diagnosis{}, fmt.Errorf("incomplete diagnosis response")
	}
	return diagnosis, nil
}

// Chat - Alert 컨텍스트 기반 자유 질의 응답 (plain text)
func (c *InferenceClient) Chat(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(res.Text())
	if answer == "" {
		return "", fmt.Errorf("empty chat response")
	}
	return answer, nil
}

// EmbedText - 해결된 Alert 요약 임베딩 (유사 장애 검색용)
func (c *InferenceClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, c.embeddingModel, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.embeddingModel, fmt.Errorf("empty embedding result")
	}
	return res.Embeddings[0].Values, c.embeddingModel, nil
}

// generateJSON - JSON 응답 모드로 텍스트 생성 후 코드펜스 제거
func (c *InferenceClient) generateJSON(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	raw := stripCodeFence(res.Text())
	if raw == "" {
		return "", fmt.Errorf("empty inference response")
	}
	return raw, nil
}

// stripCodeFence - 모델이 ```json ... ``` 로 감싼 응답에서 본문만 추출
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// normalizeLevel - 모델 응답의 level 문자열을 표준 레벨로 정규화
func normalizeLevel(level string) model.LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "WARNING", "WARN":
		return model.LevelWarning
	case "ERROR":
		return model.LevelError
	case "CRITICAL", "FATAL":
		return model.LevelCritical
	case "SUCCESS":
		return model.LevelSuccess
	default:
		return model.LevelInfo
	}
}
