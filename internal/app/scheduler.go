package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"go.uber.org/zap"
)

// ExpiredLessonLister is implemented by service.LessonService.
type ExpiredLessonLister interface {
	ExpiredLessons(ctx context.Context, today time.Time) ([]*model.Lesson, error)
}

// Scheduler управляет фоновыми задачами. Единственная задача сейчас это
// отчёт об уроках, у которых закончились дни. Состояние она не меняет.
type Scheduler struct {
	lessons  ExpiredLessonLister
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	now      func() time.Time
}

// NewScheduler создаёт новый планировщик. interval <= 0 отключает задачу.
func NewScheduler(lessons ExpiredLessonLister, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		lessons:  lessons,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Lesson expiry report disabled")
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.runExpiryReport(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	select {
	case <-s.stopChan:
	default:
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	}
}

func (s *Scheduler) runExpiryReport(ctx context.Context) {
	// Первый запуск сразу при старте
	s.reportExpired(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportExpired(ctx)
		case <-s.stopChan:
			s.logger.Info("Lesson expiry report stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Lesson expiry report cancelled")
			return
		}
	}
}

// reportExpired returns the number of expired lessons it logged.
func (s *Scheduler) reportExpired(ctx context.Context) int {
	expired, err := s.lessons.ExpiredLessons(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to list expired lessons", zap.Error(err))
		return 0
	}

	for _, l := range expired {
		s.logger.Info("Lesson has no days left",
			zap.Int64("lesson_id", l.ID),
			zap.Int64("center_id", l.CenterID),
			zap.Time("end_date", l.EndDate),
			zap.Int("remaining_capacity", l.MaxStudents),
		)
	}
	return len(expired)
}
