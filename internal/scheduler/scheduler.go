package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Task는 스케줄러가 주기적으로 실행할 작업을 정의합니다
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc는 함수를 Task로 쓰기 위한 어댑터입니다
type TaskFunc func(ctx context.Context) error

// Execute는 f(ctx)를 호출합니다
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Scheduler는 정해진 간격으로 작업을 실행합니다
type Scheduler struct {
	interval time.Duration
	task     Task
	log      logrus.FieldLogger
	stopCh   chan struct{}
}

// NewScheduler는 새로운 스케줄러를 생성합니다
func NewScheduler(interval time.Duration, task Task, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		interval: interval,
		task:     task,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start는 스케줄러 루프를 시작합니다. 컨텍스트가 취소되거나 Stop이
// 호출될 때까지 블록합니다. 작업이 실패해도 루프는 멈추지 않습니다.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("스케줄러 시작")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stopCh:
			return nil

		case <-ticker.C:
			if err := s.task.Execute(ctx); err != nil {
				s.log.WithError(err).Error("작업 실행 실패")
			}
		}
	}
}

// Stop은 스케줄러를 중지합니다
func (s *Scheduler) Stop() {
	close(s.stopCh)
}
