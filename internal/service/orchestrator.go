// Orchestrator - 단일 코디네이터 이벤트 루프
//
// Log Store/Alert Store에 대한 트리거 평가를 한 곳에서 담당:
//   - logAppended 이벤트 → Incident Detector 1회 평가
//   - healRequested 이벤트 → 해당 Alert의 healing 시퀀스 (수동 re-trigger)
//
// reactive 재계산 대신 명시적 이벤트 큐를 사용하므로
// 상태 변경당 트리거 평가가 정확히 1회, 결정적으로 일어남

package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/store"
)

type eventKind int

const (
	eventLogAppended eventKind = iota
	eventHealRequested
)

type orchestratorEvent struct {
	kind    eventKind
	alertID string
}

type Orchestrator struct {
	alerts   *store.AlertStore
	detector *Detector
	healer   *Healer

	// 선택 의존성 (nil 허용)
	notifier AlertNotifier
	archive  func(alert model.Alert)
	publish  func(event model.StreamEvent)

	events   chan orchestratorEvent
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

func NewOrchestrator(alerts *store.AlertStore, detector *Detector, healer *Healer) *Orchestrator {
	return &Orchestrator{
		alerts:   alerts,
		detector: detector,
		healer:   healer,
		events:   make(chan orchestratorEvent, 256),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

func (o *Orchestrator) SetNotifier(notifier AlertNotifier) {
	o.notifier = notifier
}

func (o *Orchestrator) SetArchiver(fn func(alert model.Alert)) {
	o.archive = fn
}

func (o *Orchestrator) SetPublisher(fn func(event model.StreamEvent)) {
	o.publish = fn
}

// Start - 이벤트 루프 goroutine 시작
func (o *Orchestrator) Start() {
	go o.loop()
}

// Stop - 새 이벤트 수신 중단 후 진행 중인 healing 시퀀스 완료 대기
// 시퀀스는 시작되면 중간 취소 없이 끝까지 실행됨
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.done)
		<-o.loopDone
		o.healer.Wait()
	})
}

// NotifyLogAppended - Log Store append 이벤트 통지
// 큐가 가득 차면 drop (이미 큐에 평가 대기 이벤트가 있으므로 안전)
func (o *Orchestrator) NotifyLogAppended() {
	select {
	case o.events <- orchestratorEvent{kind: eventLogAppended}:
	default:
		log.Printf("Orchestrator event queue full, coalescing log-appended event")
	}
}

// RequestHeal - stall된 Alert의 수동 healing re-trigger
func (o *Orchestrator) RequestHeal(alertID string) error {
	alert, ok := o.alerts.Get(alertID)
	if !ok {
		return fmt.Errorf("alert %s not found", alertID)
	}
	if alert.Status == model.StatusResolved {
		return fmt.Errorf("alert %s is already resolved", alertID)
	}

	select {
	case o.events <- orchestratorEvent{kind: eventHealRequested, alertID: alertID}:
		return nil
	case <-o.done:
		return fmt.Errorf("orchestrator is stopped")
	}
}

func (o *Orchestrator) loop() {
	defer close(o.loopDone)

	for {
		select {
		case <-o.done:
			return
		case ev := <-o.events:
			switch ev.kind {
			case eventLogAppended:
				o.handleLogAppended()
			case eventHealRequested:
				if !o.healer.Launch(ev.alertID) {
					log.Printf("Healing already in flight (alert_id=%s)", ev.alertID)
				}
			}
		}
	}
}

func (o *Orchestrator) handleLogAppended() {
	created := o.detector.Detect(context.Background())
	for _, alert := range created {
		if o.archive != nil {
			o.archive(alert)
		}
		if o.publish != nil {
			published := alert
			o.publish(model.StreamEvent{Type: model.EventAlertCreated, Alert: &published})
		}
		if o.notifier != nil {
			// 외부 알림은 이벤트 루프를 막지 않도록 비동기 전송
			go func(alert model.Alert) {
				if err := o.notifier.NotifyAlertCreated(alert); err != nil {
					log.Printf("Failed to send alert-created notification: %v", err)
				}
			}(alert)
		}
		o.healer.Launch(alert.ID)
	}
}
