package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"go.uber.org/zap"
)

// LessonService is the registry of recurring lesson offerings.
type LessonService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewLessonService(store repository.Store, logger *zap.Logger) *LessonService {
	return &LessonService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateLessonInput describes a new lesson. Either EndDate or DurationDays
// must be set; EndDate wins when both are.
type CreateLessonInput struct {
	CenterID     int64
	TeacherIDs   []int64
	SubjectIDs   []int64
	SlotIDs      []int64
	StartDate    *time.Time
	EndDate      *time.Time
	DurationDays *int
	MaxStudents  int
	Weekday      *time.Weekday
	DurationID   *int64
}

// CreateLesson сохраняет урок и синхронизирует связи учитель-предмет в одной транзакции.
func (s *LessonService) CreateLesson(ctx context.Context, in CreateLessonInput) (*model.Lesson, error) {
	lesson, err := s.buildLesson(in)
	if err != nil {
		return nil, err
	}

	var added int
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := checkLessonRefs(ctx, tx, lesson); err != nil {
			return err
		}
		if err := tx.CreateLesson(ctx, lesson); err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}

		added, err = syncRelations(ctx, tx, lesson)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson created",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("center_id", lesson.CenterID),
		zap.Int("max_students", lesson.MaxStudents),
		zap.Int("duration_days", lesson.DurationDays),
		zap.Int("relations_added", added),
	)

	return lesson, nil
}

// UpdateLesson replaces the lesson's fields and lists. New teacher and subject
// pairs are synced the same way as on creation.
func (s *LessonService) UpdateLesson(ctx context.Context, id int64, in CreateLessonInput) (*model.Lesson, error) {
	lesson, err := s.buildLesson(in)
	if err != nil {
		return nil, err
	}
	lesson.ID = id

	var added int
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := checkLessonRefs(ctx, tx, lesson); err != nil {
			return err
		}
		ok, err := tx.UpdateLesson(ctx, lesson)
		if err != nil {
			return fmt.Errorf("update lesson: %w", err)
		}
		if !ok {
			return notFound("lesson")
		}

		added, err = syncRelations(ctx, tx, lesson)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson updated",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int("max_students", lesson.MaxStudents),
		zap.Int("relations_added", added),
	)

	return lesson, nil
}

func (s *LessonService) buildLesson(in CreateLessonInput) (*model.Lesson, error) {
	teachers := dedupe(in.TeacherIDs)
	subjects := dedupe(in.SubjectIDs)
	slots := dedupe(in.SlotIDs)

	if len(teachers) == 0 {
		return nil, invalidArg("at least one teacher is required")
	}
	if len(subjects) == 0 {
		return nil, invalidArg("at least one subject is required")
	}
	if len(slots) == 0 {
		return nil, invalidArg("at least one time slot is required")
	}
	if in.MaxStudents < 0 {
		return nil, invalidArg("max_students must not be negative")
	}
	if in.Weekday != nil && (*in.Weekday < time.Sunday || *in.Weekday > time.Saturday) {
		return nil, invalidArg("weekday must be between 0 and 6")
	}

	start := model.NormalizeDay(s.now())
	if in.StartDate != nil {
		start = model.NormalizeDay(*in.StartDate)
	}

	var end time.Time
	switch {
	case in.EndDate != nil:
		end = model.NormalizeDay(*in.EndDate)
	case in.DurationDays != nil:
		if *in.DurationDays < 0 {
			return nil, invalidArg("duration_days must not be negative")
		}
		end = start.AddDate(0, 0, *in.DurationDays)
	default:
		return nil, invalidArg("end_date or duration_days is required")
	}
	if end.Before(start) {
		return nil, invalidArg("end_date is before start_date")
	}

	return &model.Lesson{
		CenterID:     in.CenterID,
		Weekday:      in.Weekday,
		StartDate:    start,
		EndDate:      end,
		DurationDays: model.DaysBetween(start, end),
		MaxStudents:  in.MaxStudents,
		DurationID:   in.DurationID,
		TeacherIDs:   teachers,
		SubjectIDs:   subjects,
		SlotIDs:      slots,
	}, nil
}

func checkLessonRefs(ctx context.Context, store repository.Store, lesson *model.Lesson) error {
	if _, err := mustCenter(ctx, store, lesson.CenterID); err != nil {
		return err
	}
	for _, id := range lesson.TeacherIDs {
		teacher, err := mustTeacher(ctx, store, id)
		if err != nil {
			return err
		}
		if !teacher.BelongsTo(lesson.CenterID) {
			return invalidRef("teacher %d is not part of center %d", id, lesson.CenterID)
		}
	}
	for _, id := range lesson.SubjectIDs {
		course, err := mustCourse(ctx, store, id)
		if err != nil {
			return err
		}
		if course.CenterID != lesson.CenterID {
			return invalidRef("subject %d is not part of center %d", id, lesson.CenterID)
		}
	}
	for _, id := range lesson.SlotIDs {
		if _, err := mustSlot(ctx, store, id); err != nil {
			return err
		}
	}
	if lesson.DurationID != nil {
		d, err := store.GetDuration(ctx, *lesson.DurationID)
		if err != nil {
			return fmt.Errorf("get duration: %w", err)
		}
		if d == nil {
			return notFound("duration")
		}
	}
	return nil
}

// SyncRelations adds every (subject, teacher) pair of the lesson to the
// course teacher set. Existing pairs are left alone. It returns how many
// pairs were new.
func (s *LessonService) SyncRelations(ctx context.Context, lessonID int64) (int, error) {
	var added int
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		lesson, err := mustLesson(ctx, tx, lessonID)
		if err != nil {
			return err
		}
		added, err = syncRelations(ctx, tx, lesson)
		return err
	})
	if err != nil {
		return 0, err
	}

	if added > 0 {
		s.logger.Info("Lesson relations synced", zap.Int64("lesson_id", lessonID), zap.Int("added", added))
	}
	return added, nil
}

func syncRelations(ctx context.Context, store repository.Store, lesson *model.Lesson) (int, error) {
	added := 0
	for _, courseID := range lesson.SubjectIDs {
		for _, teacherID := range lesson.TeacherIDs {
			ok, err := store.AddCourseTeacher(ctx, courseID, teacherID)
			if err != nil {
				return 0, fmt.Errorf("add course teacher: %w", err)
			}
			if ok {
				added++
			}
		}
	}
	return added, nil
}

// DaysUntilEnd returns the days left before the lesson ends, never negative.
func (s *LessonService) DaysUntilEnd(ctx context.Context, lessonID int64) (int, error) {
	lesson, err := mustLesson(ctx, s.store, lessonID)
	if err != nil {
		return 0, err
	}
	return lesson.DaysUntilEnd(s.now()), nil
}

// DecrementCapacity takes one place from the lesson.
func (s *LessonService) DecrementCapacity(ctx context.Context, lessonID int64) error {
	if err := decrementCapacity(ctx, s.store, lessonID); err != nil {
		return err
	}
	s.logger.Info("Lesson capacity decremented", zap.Int64("lesson_id", lessonID))
	return nil
}

func (s *LessonService) IncrementCapacity(ctx context.Context, lessonID int64) error {
	if err := incrementCapacity(ctx, s.store, lessonID); err != nil {
		return err
	}
	s.logger.Info("Lesson capacity incremented", zap.Int64("lesson_id", lessonID))
	return nil
}

// decrementCapacity отличает исчерпанную вместимость от удалённого урока.
func decrementCapacity(ctx context.Context, store repository.Store, lessonID int64) error {
	ok, err := store.DecrementLessonCapacity(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("decrement lesson capacity: %w", err)
	}
	if ok {
		return nil
	}

	if _, err := mustLesson(ctx, store, lessonID); err != nil {
		return err
	}
	return ErrCapacityExceeded
}

func incrementCapacity(ctx context.Context, store repository.Store, lessonID int64) error {
	ok, err := store.IncrementLessonCapacity(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("increment lesson capacity: %w", err)
	}
	if !ok {
		return notFound("lesson")
	}
	return nil
}

func (s *LessonService) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	return mustLesson(ctx, s.store, id)
}

func (s *LessonService) ListLessons(ctx context.Context, filter model.LessonFilter) ([]*model.Lesson, error) {
	lessons, err := s.store.ListLessons(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// DeleteLesson removes the lesson. Appointments keep existing with their
// lesson reference cleared.
func (s *LessonService) DeleteLesson(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteLesson(ctx, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if !ok {
		return notFound("lesson")
	}

	s.logger.Info("Lesson deleted", zap.Int64("lesson_id", id))
	return nil
}

// LessonsForSubject lists the subject's lessons in the caller's center.
func (s *LessonService) LessonsForSubject(ctx context.Context, userID, subjectID int64) ([]*model.Lesson, error) {
	center, _, err := resolveCenter(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	if _, err := mustCourse(ctx, s.store, subjectID); err != nil {
		return nil, err
	}

	return s.ListLessons(ctx, model.LessonFilter{CenterID: &center.ID, SubjectID: &subjectID})
}

// LessonTimes returns the slots of the lessons a teacher gives for a subject
// in the caller's center, ordered by time.
func (s *LessonService) LessonTimes(ctx context.Context, userID, teacherID, subjectID int64) ([]*model.TimeSlot, error) {
	center, _, err := resolveCenter(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	if _, err := mustTeacher(ctx, s.store, teacherID); err != nil {
		return nil, err
	}
	if _, err := mustCourse(ctx, s.store, subjectID); err != nil {
		return nil, err
	}

	lessons, err := s.ListLessons(ctx, model.LessonFilter{
		CenterID:  &center.ID,
		SubjectID: &subjectID,
		TeacherID: &teacherID,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var slots []*model.TimeSlot
	for _, l := range lessons {
		for _, id := range l.SlotIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			slot, err := mustSlot(ctx, s.store, id)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
	}

	slices.SortFunc(slots, func(a, b *model.TimeSlot) int { return int(a.Time) - int(b.Time) })
	return slots, nil
}

// ExpiredLessons returns lessons with no days left as of today.
func (s *LessonService) ExpiredLessons(ctx context.Context, today time.Time) ([]*model.Lesson, error) {
	lessons, err := s.ListLessons(ctx, model.LessonFilter{})
	if err != nil {
		return nil, err
	}

	var expired []*model.Lesson
	for _, l := range lessons {
		if l.DaysUntilEnd(today) == 0 {
			expired = append(expired, l)
		}
	}
	return expired, nil
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
