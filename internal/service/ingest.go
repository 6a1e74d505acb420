// 로그 수집 비즈니스 로직 정의
//
// 처리 흐름:
//  1. 원본 텍스트는 앞 10,000자(INGEST_MAX_CHARS)만 파서에 전달 (collaborator 비용 상한)
//  2. 파싱 실패/빈 결과는 정상 케이스 (append 0건)
//  3. append된 레코드는 DB 아카이브(best-effort) + 스트림 발행 + 오케스트레이터 통지
//  4. 합성 배치(데모 시나리오)는 파서 없이 직접 append

package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/data-sentry/backend/internal/metrics"
	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
	"github.com/google/uuid"
)

// LogParser - Log Parser collaborator 계약 (client.InferenceClient가 구현)
type LogParser interface {
	ParseLogs(ctx context.Context, text string) ([]model.LogRecord, error)
}

// LogArchiver - 로그 아카이브 계약 (db.Postgres가 구현)
type LogArchiver interface {
	ArchiveLogs(ctx context.Context, records []model.LogRecord) error
}

type IngestService struct {
	logs     *store.LogStore
	parser   LogParser
	maxChars int

	// 선택 의존성 (nil 허용)
	archiver LogArchiver
	publish  func(event model.StreamEvent)
	notify   func()
}

func NewIngestService(logs *store.LogStore, parser LogParser, maxChars int) *IngestService {
	return &IngestService{
		logs:     logs,
		parser:   parser,
		maxChars: maxChars,
	}
}

func (s *IngestService) SetArchiver(archiver LogArchiver) {
	s.archiver = archiver
}

func (s *IngestService) SetPublisher(fn func(event model.StreamEvent)) {
	s.publish = fn
}

// SetNotifier - append 후 오케스트레이터 이벤트 통지 연결
func (s *IngestService) SetNotifier(fn func()) {
	s.notify = fn
}

// IngestText - 원본 로그 텍스트 수집
// 반환값: (파싱된 레코드 수, append된 레코드 수)
func (s *IngestService) IngestText(ctx context.Context, text string) (int, int) {
	// 파서 미설정(degraded 모드) 시 수집 비활성 (Detector/Healer와 동일하게 no-op)
	if s.parser == nil {
		log.Printf("Log parser is not configured, dropping ingest payload")
		return 0, 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0
	}
	if runes := []rune(text); len(runes) > s.maxChars {
		log.Printf("Truncating ingest payload: %d -> %d chars", len(runes), s.maxChars)
		text = string(runes[:s.maxChars])
	}

	records, err := s.parser.ParseLogs(ctx, text)
	if err != nil {
		// 파서 실패는 빈 결과와 동일하게 처리 (절대 전파하지 않음)
		log.Printf("Log parsing failed: %v", err)
		return 0, 0
	}
	if len(records) == 0 {
		return 0, 0
	}

	return len(records), s.appendRecords(records)
}

// IngestBatch - 사전 구조화된 합성 배치 수집
// ID/타임스탬프가 빠진 레코드는 여기서 채움
func (s *IngestService) IngestBatch(records []model.LogRecord) int {
	now := time.Now()
	filled := make([]model.LogRecord, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.Timestamp.IsZero() {
			record.Timestamp = now
		}
		if record.Level == "" {
			record.Level = model.LevelInfo
		}
		filled = append(filled, record)
	}
	return s.appendRecords(filled)
}

// SeedDemoScenario - 데모용 합성 장애 시나리오 주입
// 웨어하우스 크레딧 고갈이 파이프라인 전체로 전파되는 케이스
func (s *IngestService) SeedDemoScenario() int {
	base := time.Now().Add(-5 * time.Minute)
	scenario := []model.LogRecord{
		{Service: "Airflow", Level: model.LevelInfo, Message: "DAG daily_revenue_rollup started"},
		{Service: "Snowflake", Level: model.LevelInfo, Message: "Warehouse TRANSFORM_WH resumed"},
		{Service: "Snowflake", Level: model.LevelWarning, Message: "Warehouse TRANSFORM_WH credit quota at 92%"},
		{Service: "Snowflake", Level: model.LevelCritical, Message: "Statement aborted: credit quota exceeded for warehouse TRANSFORM_WH"},
		{Service: "dbt", Level: model.LevelError, Message: "Model fct_revenue failed: Database Error: statement aborted"},
		{Service: "Airflow", Level: model.LevelError, Message: "Task transform_revenue failed after 3 retries"},
		{Service: "Kafka", Level: model.LevelWarning, Message: "Consumer group revenue-sink lag above threshold: 120000 messages"},
	}
	for i := range scenario {
		scenario[i].ID = uuid.NewString()
		scenario[i].Timestamp = base.Add(time.Duration(i) * 30 * time.Second)
	}
	return s.appendRecords(scenario)
}

func (s *IngestService) appendRecords(records []model.LogRecord) int {
	appended := s.logs.AppendBatch(records)
	for _, record := range records {
		metrics.CountLogIngested(string(record.Level))
		if s.publish != nil {
			published := record
			s.publish(model.StreamEvent{Type: model.EventLogAppended, Log: &published})
		}
	}

	// 아카이브 실패해도 수집은 계속 진행
	if s.archiver != nil {
		go func(records []model.LogRecord) {
			if err := s.archiver.ArchiveLogs(context.Background(), records); err != nil {
				log.Printf("Failed to archive logs: %v", err)
			}
		}(records)
	}

	if s.notify != nil {
		s.notify()
	}
	return appended
}
