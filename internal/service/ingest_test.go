package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

type fakeParser struct {
	records  []model.LogRecord
	err      error
	lastText string
}

func (f *fakeParser) ParseLogs(ctx context.Context, text string) ([]model.LogRecord, error) {
	f.lastText = text
	return f.records, f.err
}

func TestIngestTextAppendsParsedRecords(t *testing.T) {
	parser := &fakeParser{
		records: []model.LogRecord{
			logRecord("log-1", "Snowflake", model.LevelInfo),
			logRecord("log-2", "Snowflake", model.LevelError),
		},
	}
	logs := store.NewLogStore()
	svc := NewIngestService(logs, parser, 10000)

	notified := 0
	svc.SetNotifier(func() { notified++ })

	parsed, appended := svc.IngestText(context.Background(), "2026-08-30 ERROR something broke")
	if parsed != 2 || appended != 2 {
		t.Fatalf("parsed=%d appended=%d, want 2/2", parsed, appended)
	}
	if logs.Len() != 2 {
		t.Fatalf("log store length = %d", logs.Len())
	}
	if notified != 1 {
		t.Fatalf("notify count = %d, want 1", notified)
	}
}

func TestIngestTextTruncatesLongPayload(t *testing.T) {
	parser := &fakeParser{}
	svc := NewIngestService(store.NewLogStore(), parser, 100)

	payload := strings.Repeat("x", 250)
	svc.IngestText(context.Background(), payload)

	if len(parser.lastText) != 100 {
		t.Fatalf("parser received %d chars, want 100", len(parser.lastText))
	}
}

func TestIngestTextTruncatesOnRuneBoundary(t *testing.T) {
	parser := &fakeParser{}
	svc := NewIngestService(store.NewLogStore(), parser, 100)

	// 멀티바이트 문자 페이로드에서 문자 단위로 잘라야 함 (바이트 단위 X)
	payload := strings.Repeat("로", 250)
	svc.IngestText(context.Background(), payload)

	if got := utf8.RuneCountInString(parser.lastText); got != 100 {
		t.Fatalf("parser received %d runes, want 100", got)
	}
	if !utf8.ValidString(parser.lastText) {
		t.Fatalf("truncation split a multi-byte rune")
	}
}

func TestIngestTextNilParserIsQuiet(t *testing.T) {
	logs := store.NewLogStore()
	svc := NewIngestService(logs, nil, 10000)

	notified := false
	svc.SetNotifier(func() { notified = true })

	parsed, appended := svc.IngestText(context.Background(), "2026-08-30 ERROR something broke")
	if parsed != 0 || appended != 0 {
		t.Fatalf("parsed=%d appended=%d, want 0/0", parsed, appended)
	}
	if logs.Len() != 0 || notified {
		t.Fatalf("unconfigured parser must not touch the store")
	}
}

func TestIngestTextParserFailureIsQuiet(t *testing.T) {
	parser := &fakeParser{err: fmt.Errorf("model quota exceeded")}
	logs := store.NewLogStore()
	svc := NewIngestService(logs, parser, 10000)

	notified := false
	svc.SetNotifier(func() { notified = true })

	parsed, appended := svc.IngestText(context.Background(), "broken payload")
	if parsed != 0 || appended != 0 {
		t.Fatalf("parsed=%d appended=%d, want 0/0", parsed, appended)
	}
	if logs.Len() != 0 || notified {
		t.Fatalf("parser failure must not touch the store")
	}
}

func TestIngestTextEmptyInput(t *testing.T) {
	parser := &fakeParser{}
	svc := NewIngestService(store.NewLogStore(), parser, 10000)

	parsed, appended := svc.IngestText(context.Background(), "   \n\t  ")
	if parsed != 0 || appended != 0 {
		t.Fatalf("parsed=%d appended=%d, want 0/0", parsed, appended)
	}
	if parser.lastText != "" {
		t.Fatalf("parser must not run for empty input")
	}
}

func TestIngestBatchFillsMissingFields(t *testing.T) {
	logs := store.NewLogStore()
	svc := NewIngestService(logs, nil, 10000)

	appended := svc.IngestBatch([]model.LogRecord{
		{Service: "Kafka", Message: "broker restarted"},
		{ID: "log-fixed", Service: "dbt", Level: model.LevelError, Message: "model failed", Timestamp: time.Now()},
	})
	if appended != 2 {
		t.Fatalf("appended = %d, want 2", appended)
	}

	snap := logs.Snapshot()
	if snap[0].ID == "" || snap[0].Timestamp.IsZero() {
		t.Fatalf("missing fields not filled: %+v", snap[0])
	}
	if snap[0].Level != model.LevelInfo {
		t.Fatalf("default level = %s, want INFO", snap[0].Level)
	}
	if snap[1].ID != "log-fixed" {
		t.Fatalf("provided ID overwritten: %s", snap[1].ID)
	}
}

func TestSeedDemoScenario(t *testing.T) {
	logs := store.NewLogStore()
	svc := NewIngestService(logs, nil, 10000)

	appended := svc.SeedDemoScenario()
	if appended != 7 {
		t.Fatalf("appended = %d, want 7", appended)
	}
	if !logs.HasIncidentTrigger() {
		t.Fatalf("demo scenario must contain an incident trigger")
	}
	snap := logs.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].Timestamp.Before(snap[i-1].Timestamp) {
			t.Fatalf("scenario timestamps out of order at %d", i)
		}
	}
}
