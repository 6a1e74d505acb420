package db

import (
	"context"

	"github.com/data-sentry/backend/internal/model"
	"github.com/pgvector/pgvector-go"
)

// EnsureResolutionSchema - 해결된 Alert 임베딩 테이블 생성 (pgvector)
func (db *Postgres) EnsureResolutionSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS resolutions (
			id BIGSERIAL PRIMARY KEY,
			alert_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			fix_action TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			embedding vector(768),
			model TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS resolutions_alert_id_idx ON resolutions(alert_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// InsertResolution - 해결된 Alert 요약 임베딩 저장
func (db *Postgres) InsertResolution(ctx context.Context, alertID, title, fixAction, summary, embeddingModel string, vector []float32) (int64, error) {
	query := `
		INSERT INTO resolutions (alert_id, title, fix_action, summary, embedding, model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := db.Pool.QueryRow(ctx, query, alertID, title, fixAction, summary, pgvector.NewVector(vector), embeddingModel).Scan(&id)
	return id, err
}

// FindSimilarResolutions - 코사인 거리 기준 유사 해결 이력 조회
func (db *Postgres) FindSimilarResolutions(ctx context.Context, vector []float32, excludeAlertID string, limit int) ([]model.SimilarResolution, error) {
	query := `
		SELECT alert_id, title, fix_action, embedding <=> $1 AS distance
		FROM resolutions
		WHERE alert_id != $2
		ORDER BY distance
		LIMIT $3
	`

	rows, err := db.Pool.Query(ctx, query, pgvector.NewVector(vector), excludeAlertID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SimilarResolution
	for rows.Next() {
		var r model.SimilarResolution
		if err := rows.Scan(&r.AlertID, &r.Title, &r.FixAction, &r.Distance); err != nil {
			return nil, err
		}
		list = append(list, r)
	}

	if list == nil {
		list = []model.SimilarResolution{}
	}
	return list, nil
}
