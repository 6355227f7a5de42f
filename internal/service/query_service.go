package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"go.uber.org/zap"
)

// ScheduleRenderer draws a day of teacher schedules as an image.
type ScheduleRenderer func(day time.Time, schedules []model.TeacherSchedule) ([]byte, error)

var errNoRenderer = errors.New("schedule renderer is not configured")

// QueryService builds read-only views. It never writes.
type QueryService struct {
	store    repository.Store
	renderer ScheduleRenderer
	logger   *zap.Logger
}

func NewQueryService(store repository.Store, renderer ScheduleRenderer, logger *zap.Logger) *QueryService {
	return &QueryService{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// AvailableDays returns the distinct weekdays of the lessons that subject
// appointments were booked into.
func (s *QueryService) AvailableDays(ctx context.Context, subjectID int64) ([]time.Weekday, error) {
	if _, err := mustCourse(ctx, s.store, subjectID); err != nil {
		return nil, err
	}

	days, err := s.store.ListLessonWeekdaysBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list lesson weekdays: %w", err)
	}
	return days, nil
}

func (s *QueryService) TeachersFor(ctx context.Context, subjectID int64) ([]*model.Teacher, error) {
	if _, err := mustCourse(ctx, s.store, subjectID); err != nil {
		return nil, err
	}

	teachers, err := s.store.ListTeachersByCourse(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list teachers by course: %w", err)
	}
	return teachers, nil
}

// ScheduleFor строит расписание на день в зависимости от роли пользователя:
// студент видит свои записи, учитель свои, владелец центра всех учителей центра.
func (s *QueryService) ScheduleFor(ctx context.Context, userID int64, date time.Time) ([]model.TeacherSchedule, error) {
	center, role, err := resolveCenter(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	day := model.NormalizeDay(date)

	switch role {
	case model.RoleStudent:
		appts, err := s.store.ListAppointments(ctx, model.AppointmentFilter{UserID: &userID, Day: &day})
		if err != nil {
			return nil, fmt.Errorf("list student appointments: %w", err)
		}
		return groupByTeacher(nil, appts), nil

	case model.RoleTeacher:
		teacher, err := s.store.GetTeacherByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get teacher: %w", err)
		}
		if teacher == nil {
			return nil, notFound("teacher")
		}
		appts, err := s.store.ListAppointments(ctx, model.AppointmentFilter{TeacherID: &teacher.ID, Day: &day})
		if err != nil {
			return nil, fmt.Errorf("list teacher appointments: %w", err)
		}
		return groupByTeacher([]*model.Teacher{teacher}, appts), nil

	default:
		teachers, err := s.store.ListTeachersByCenter(ctx, center.ID)
		if err != nil {
			return nil, fmt.Errorf("list center teachers: %w", err)
		}
		appts, err := s.store.ListAppointments(ctx, model.AppointmentFilter{CenterID: &center.ID, Day: &day})
		if err != nil {
			return nil, fmt.Errorf("list center appointments: %w", err)
		}
		return groupByTeacher(teachers, appts), nil
	}
}

// ScheduleImage renders ScheduleFor as a PNG.
func (s *QueryService) ScheduleImage(ctx context.Context, userID int64, date time.Time) ([]byte, error) {
	if s.renderer == nil {
		return nil, errNoRenderer
	}

	schedules, err := s.ScheduleFor(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	img, err := s.renderer(model.NormalizeDay(date), schedules)
	if err != nil {
		return nil, fmt.Errorf("render schedule: %w", err)
	}

	s.logger.Debug("Schedule image rendered",
		zap.Int64("user_id", userID),
		zap.Int("teachers", len(schedules)),
		zap.Int("bytes", len(img)),
	)
	return img, nil
}

// groupByTeacher keeps the teachers order (seeded schedules come first, even
// when empty) and groups appointments of one teacher by slot start. appts
// must be ordered by time. Appointments without a teacher are skipped.
func groupByTeacher(seed []*model.Teacher, appts []*model.Appointment) []model.TeacherSchedule {
	schedules := make([]model.TeacherSchedule, 0, len(seed))
	index := make(map[int64]int, len(seed))

	for _, t := range seed {
		index[t.ID] = len(schedules)
		schedules = append(schedules, model.TeacherSchedule{TeacherID: t.ID, Teacher: t.Name, Slots: []model.ScheduledSlot{}})
	}

	for _, a := range appts {
		// Записи без учителя в расписание по учителям не попадают
		if a.TeacherID == nil {
			continue
		}
		teacherID := *a.TeacherID

		i, ok := index[teacherID]
		if !ok {
			i = len(schedules)
			index[teacherID] = i
			schedules = append(schedules, model.TeacherSchedule{TeacherID: teacherID, Teacher: a.TeacherName, Slots: []model.ScheduledSlot{}})
		}

		sched := &schedules[i]
		end := a.SlotTime + model.TimeOfDay(a.Duration/time.Second)
		attendee := model.Attendee{ID: a.UserID, Name: a.UserName}

		if n := len(sched.Slots); n > 0 && sched.Slots[n-1].Start == a.SlotTime {
			last := &sched.Slots[n-1]
			last.Attendees = append(last.Attendees, attendee)
			if end > last.End {
				last.End = end
			}
			continue
		}

		sched.Slots = append(sched.Slots, model.ScheduledSlot{
			Time:      a.SlotTime.Clock12(),
			Start:     a.SlotTime,
			End:       end,
			Attendees: []model.Attendee{attendee},
		})
	}

	return schedules
}
