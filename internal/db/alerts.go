package db

import (
	"context"
	"encoding/json"

	"github.com/data-sentry/backend/internal/model"
)

// EnsureAlertSchema - alerts 아카이브 테이블 생성
func (db *Postgres) EnsureAlertSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alerts (
			alert_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL DEFAULT 'medium',
			status TEXT NOT NULL DEFAULT 'active',
			affected_service TEXT NOT NULL DEFAULT '',
			fired_at TIMESTAMPTZ,
			fix_action TEXT NOT NULL DEFAULT '',
			agent_thoughts JSONB NOT NULL DEFAULT '[]',
			related_log_ids JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alerts_status_idx ON alerts(status)`,
		`CREATE INDEX IF NOT EXISTS alerts_fired_at_idx ON alerts(fired_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alerts_service_idx ON alerts(affected_service)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveAlert - Alert 현재 상태를 아카이브 테이블에 upsert
// 생성 시점과 resolved 전이 시점에 호출됨 (중간 상태는 인메모리 store에만 존재)
func (db *Postgres) ArchiveAlert(ctx context.Context, alert model.Alert) error {
	thoughts, err := json.Marshal(alert.AgentThoughts)
	if err != nil {
		return err
	}
	relatedIDs, err := json.Marshal(alert.RelatedLogIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO alerts (
			alert_id, title, description, severity, status, affected_service,
			fired_at, fix_action, agent_thoughts, related_log_ids, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (alert_id) DO UPDATE SET
			status = EXCLUDED.status,
			fix_action = EXCLUDED.fix_action,
			agent_thoughts = EXCLUDED.agent_thoughts,
			updated_at = NOW()
	`

	_, err = db.Pool.Exec(ctx, query,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.Severity,
		alert.Status,
		alert.AffectedService,
		alert.Timestamp,
		alert.FixAction,
		thoughts,
		relatedIDs,
	)
	return err
}
