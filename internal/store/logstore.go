// Log Store - append-only 인메모리 로그 저장소
// 모든 다운스트림 분석(감지/필터/프레젠테이션)의 source of truth
//
// 불변 조건:
//   - append만 가능, 수정/삭제 없음 (레코드 수는 단조 증가)
//   - 읽기는 항상 append 순서의 prefix와 일치하는 스냅샷

package store

import (
	"sync"

	"github.com/data-sentry/backend/internal/model"
)

type LogStore struct {
	mu      sync.RWMutex
	records []model.LogRecord
}

func NewLogStore() *LogStore {
	return &LogStore{}
}

// Append - 레코드 1건 추가
func (s *LogStore) Append(record model.LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

// AppendBatch - 레코드 일괄 추가 (배치 내부 순서 유지)
func (s *LogStore) AppendBatch(records []model.LogRecord) int {
	if len(records) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return len(records)
}

// Snapshot - append 순서를 유지한 전체 복사본 반환
func (s *LogStore) Snapshot() []model.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LogRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *LogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// HasIncidentTrigger - 감지 게이트를 여는 레코드(ERROR/CRITICAL) 존재 여부
func (s *LogStore) HasIncidentTrigger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.Level.IsIncidentTrigger() {
			return true
		}
	}
	return false
}

// ContainsID - 해당 ID의 레코드 존재 여부 (related_log_ids 검증용)
func (s *LogStore) ContainsID(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.ID == id {
			return true
		}
	}
	return false
}
