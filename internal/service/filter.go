// Filter/Correlation View - Alert 관련 로그 서브셋 도출
//
// 우선순위:
//  1. related_log_ids가 있으면 해당 ID의 레코드만 (Log Store 순서 유지)
//  2. 없으면 affected_service 일치 + WARNING 이상 레벨
//  3. 둘 다 결과가 없으면 필터 없음 (전체 Log Store 반환)

package service

import (
	"github.com/data-sentry/backend/internal/model"
)

func RelatedLogs(alert model.Alert, logs []model.LogRecord) []model.LogRecord {
	if len(alert.RelatedLogIDs) > 0 {
		idSet := make(map[string]struct{}, len(alert.RelatedLogIDs))
		for _, id := range alert.RelatedLogIDs {
			idSet[id] = struct{}{}
		}

		var matched []model.LogRecord
		for _, record := range logs {
			if _, ok := idSet[record.ID]; ok {
				matched = append(matched, record)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}

	// 폴백: 서비스 + 레벨 휴리스틱
	var matched []model.LogRecord
	for _, record := range logs {
		if record.Service == alert.AffectedService && record.Level.IsProblem() {
			matched = append(matched, record)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	// 빈 결과 대신 전체 반환 (consumer가 dead end를 만나지 않도록)
	return logs
}
