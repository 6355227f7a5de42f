package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeLessons struct {
	lessons []*model.Lesson
	err     error
	today   time.Time
}

func (f *fakeLessons) ExpiredLessons(_ context.Context, today time.Time) ([]*model.Lesson, error) {
	f.today = today
	return f.lessons, f.err
}

func TestReportExpiredLogsEachLesson(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lessons := &fakeLessons{lessons: []*model.Lesson{{ID: 1}, {ID: 2}}}

	s := NewScheduler(lessons, time.Hour, zap.New(core))
	fixed := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	n := s.reportExpired(context.Background())

	assert.Equal(t, 2, n)
	assert.Equal(t, fixed, lessons.today)
	assert.Equal(t, 2, logs.FilterMessage("Lesson has no days left").Len())
}

func TestReportExpiredSurvivesErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewScheduler(&fakeLessons{err: errors.New("db down")}, time.Hour, zap.New(core))

	assert.Zero(t, s.reportExpired(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Failed to list expired lessons").Len())
}

func TestStartDisabledWithZeroInterval(t *testing.T) {
	lessons := &fakeLessons{}
	s := NewScheduler(lessons, 0, zap.NewNop())

	s.Start(context.Background())
	s.Stop()
	s.Stop()

	assert.True(t, lessons.today.IsZero())
}
