package db

import (
	"context"

	"github.com/data-sentry/backend/internal/model"
)

// EnsureLogSchema - logs 아카이브 테이블 생성
func (db *Postgres) EnsureLogSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS logs (
			log_id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			service TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT 'INFO',
			message TEXT NOT NULL DEFAULT '',
			raw TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS logs_ts_idx ON logs(ts DESC)`,
		`CREATE INDEX IF NOT EXISTS logs_service_idx ON logs(service)`,
		`CREATE INDEX IF NOT EXISTS logs_level_idx ON logs(level)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveLogs - 로그 레코드를 아카이브 테이블에 저장
// 중복 ID는 무시 (인메모리 store가 source of truth)
func (db *Postgres) ArchiveLogs(ctx context.Context, records []model.LogRecord) error {
	query := `
		INSERT INTO logs (log_id, ts, service, level, message, raw)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (log_id) DO NOTHING
	`
	for _, record := range records {
		_, err := db.Pool.Exec(ctx, query,
			record.ID,
			record.Timestamp,
			record.Service,
			record.Level,
			record.Message,
			record.Raw,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
