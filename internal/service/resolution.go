// 해결 이력 임베딩 및 유사 장애 검색 비즈니스 로직 정의
//
// 처리 흐름:
//  1. Alert가 resolved될 때 제목+내러티브+조치를 요약 텍스트로 임베딩하여 저장
//  2. 유사 장애 조회 시 대상 Alert를 같은 방식으로 임베딩하여 최근접 이력 반환

package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

type ResolutionRepo interface {
	InsertResolution(ctx context.Context, alertID, title, fixAction, summary, embeddingModel string, vector []float32) (int64, error)
	FindSimilarResolutions(ctx context.Context, vector []float32, excludeAlertID string, limit int) ([]model.SimilarResolution, error)
}

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type ResolutionService struct {
	repo     ResolutionRepo
	embedder Embedder
	alerts   *store.AlertStore
}

func NewResolutionService(repo ResolutionRepo, embedder Embedder, alerts *store.AlertStore) *ResolutionService {
	return &ResolutionService{
		repo:     repo,
		embedder: embedder,
		alerts:   alerts,
	}
}

// IndexResolution - 해결된 Alert의 요약 임베딩 저장 (best-effort)
// Healer의 onResolved 훅에서 비동기로 호출됨
func (s *ResolutionService) IndexResolution(alert model.Alert) {
	summary := resolutionSummary(alert)
	ctx := context.Background()

	vector, embeddingModel, err := s.embedder.EmbedText(ctx, summary)
	if err != nil {
		log.Printf("Failed to embed resolution (alert_id=%s): %v", alert.ID, err)
		return
	}

	if _, err := s.repo.InsertResolution(ctx, alert.ID, alert.Title, alert.FixAction, summary, embeddingModel, vector); err != nil {
		log.Printf("Failed to store resolution embedding (alert_id=%s): %v", alert.ID, err)
		return
	}
	log.Printf("Indexed resolution embedding (alert_id=%s)", alert.ID)
}

// FindSimilar - 과거 해결 이력 중 대상 Alert와 유사한 항목 조회
func (s *ResolutionService) FindSimilar(ctx context.Context, alertID string, limit int) ([]model.SimilarResolution, error) {
	alert, ok := s.alerts.Get(alertID)
	if !ok {
		return nil, fmt.Errorf("alert %s not found", alertID)
	}
	if limit <= 0 {
		limit = 5
	}

	vector, _, err := s.embedder.EmbedText(ctx, resolutionSummary(alert))
	if err != nil {
		return nil, err
	}

	return s.repo.FindSimilarResolutions(ctx, vector, alertID, limit)
}

func resolutionSummary(alert model.Alert) string {
	parts := []string{alert.Title, alert.Description}
	parts = append(parts, alert.AgentThoughts...)
	if alert.FixAction != "" {
		parts = append(parts, alert.FixAction)
	}
	return strings.Join(parts, "\n")
}
