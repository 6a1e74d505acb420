package service

import (
	"context"
	"errors"
	"testing"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

type fakeResolutionRepo struct {
	inserted  []string
	similar   []model.SimilarResolution
	lastLimit int
	err       error
}

func (f *fakeResolutionRepo) InsertResolution(ctx context.Context, alertID, title, fixAction, summary, embeddingModel string, vector []float32) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, alertID)
	return int64(len(f.inserted)), nil
}

func (f *fakeResolutionRepo) FindSimilarResolutions(ctx context.Context, vector []float32, excludeAlertID string, limit int) ([]model.SimilarResolution, error) {
	f.lastLimit = limit
	return f.similar, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return []float32{0.1, 0.2, 0.3}, "text-embedding-004", nil
}

func resolvedAlert(id string) model.Alert {
	return model.Alert{
		ID:            id,
		Title:         "Kafka consumer lag spike",
		Description:   "Lag above threshold on revenue-sink",
		AgentThoughts: []string{"Broker restart left the group stuck."},
		FixAction:     "Restarted consumer group revenue-sink",
	}
}

func TestIndexResolution(t *testing.T) {
	repo := &fakeResolutionRepo{}
	svc := NewResolutionService(repo, &fakeEmbedder{}, store.NewAlertStore())

	svc.IndexResolution(resolvedAlert("alert-1"))
	if len(repo.inserted) != 1 || repo.inserted[0] != "alert-1" {
		t.Fatalf("inserted = %v", repo.inserted)
	}
}

func TestIndexResolutionEmbedFailureIsQuiet(t *testing.T) {
	repo := &fakeResolutionRepo{}
	svc := NewResolutionService(repo, &fakeEmbedder{err: errors.New("embedding quota")}, store.NewAlertStore())

	svc.IndexResolution(resolvedAlert("alert-1"))
	if len(repo.inserted) != 0 {
		t.Fatalf("nothing should be stored when embedding fails")
	}
}

func TestFindSimilar(t *testing.T) {
	alerts := store.NewAlertStore()
	alert := resolvedAlert("alert-1")
	alert.Status = model.StatusActive
	if err := alerts.Insert(alert); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	repo := &fakeResolutionRepo{
		similar: []model.SimilarResolution{{AlertID: "alert-old", Title: "Kafka consumer lag spike", Distance: 0.07}},
	}
	svc := NewResolutionService(repo, &fakeEmbedder{}, alerts)

	got, err := svc.FindSimilar(context.Background(), "alert-1", 0)
	if err != nil {
		t.Fatalf("find similar failed: %v", err)
	}
	if len(got) != 1 || got[0].AlertID != "alert-old" {
		t.Fatalf("similar = %+v", got)
	}
	if repo.lastLimit != 5 {
		t.Fatalf("default limit = %d, want 5", repo.lastLimit)
	}
}

func TestFindSimilarUnknownAlert(t *testing.T) {
	svc := NewResolutionService(&fakeResolutionRepo{}, &fakeEmbedder{}, store.NewAlertStore())
	if _, err := svc.FindSimilar(context.Background(), "missing", 5); err == nil {
		t.Fatalf("expected error for unknown alert")
	}
}
