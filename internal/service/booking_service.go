package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/lock"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"go.uber.org/zap"
)

// BookingConfig tunes the optional per-teacher lock and event delivery.
type BookingConfig struct {
	LockTTL  time.Duration
	LockWait time.Duration
	// NotifyTimeout bounds a single event delivery after commit.
	NotifyTimeout time.Duration
}

// BookingService decides whether appointments may be created and keeps each
// teacher's day free of overlapping appointments.
type BookingService struct {
	store    repository.Store
	locker   lock.Locker
	notifier Notifier
	cfg      BookingConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService builds the engine. locker and notifier may be nil.
func NewBookingService(
	store repository.Store,
	locker lock.Locker,
	notifier Notifier,
	cfg BookingConfig,
	logger *zap.Logger,
) *BookingService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 2 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	return &BookingService{
		store:    store,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateAppointmentInput struct {
	UserID     int64
	TeacherID  *int64
	CenterID   int64
	SubjectID  *int64
	LessonID   *int64
	TimeSlotID int64
	Day        time.Time
	// Zero means "take the length of the lesson's default duration".
	Duration time.Duration
}

// CheckAvailability reports whether the teacher is free for duration starting
// at the slot on day.
func (s *BookingService) CheckAvailability(ctx context.Context, teacherID int64, day time.Time, slotID int64, duration time.Duration) (bool, error) {
	if duration <= 0 {
		return false, invalidArg("duration must be positive")
	}
	if _, err := mustTeacher(ctx, s.store, teacherID); err != nil {
		return false, err
	}
	slot, err := mustSlot(ctx, s.store, slotID)
	if err != nil {
		return false, err
	}

	conflict, err := hasConflict(ctx, s.store, teacherID, day, model.IntervalAt(slot.Time, duration))
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// hasConflict ищет запись учителя в тот же день, чей интервал пересекается с want.
func hasConflict(ctx context.Context, store repository.Store, teacherID int64, day time.Time, want model.Interval) (bool, error) {
	d := model.NormalizeDay(day)
	existing, err := store.ListAppointments(ctx, model.AppointmentFilter{TeacherID: &teacherID, Day: &d})
	if err != nil {
		return false, fmt.Errorf("list teacher appointments: %w", err)
	}

	for _, appt := range existing {
		if appt.Interval().Overlaps(want) {
			return true, nil
		}
	}
	return false, nil
}

// CreateAppointment проверяет доступность и создаёт запись атомарно.
// При привязке к уроку уменьшает его вместимость в той же транзакции.
func (s *BookingService) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*model.Appointment, error) {
	if in.Duration < 0 {
		return nil, invalidArg("duration must be positive")
	}

	appt := &model.Appointment{
		UserID:     in.UserID,
		TeacherID:  in.TeacherID,
		CenterID:   in.CenterID,
		SubjectID:  in.SubjectID,
		LessonID:   in.LessonID,
		TimeSlotID: in.TimeSlotID,
		Day:        model.NormalizeDay(in.Day),
		Duration:   in.Duration,
	}
	var teacherChat *int64

	err := s.withTeacherLock(ctx, in.TeacherID, func() error {
		return s.store.Atomic(ctx, func(tx repository.Store) error {
			user, err := mustUser(ctx, tx, in.UserID)
			if err != nil {
				return err
			}
			appt.UserName = user.Name

			if _, err := mustCenter(ctx, tx, in.CenterID); err != nil {
				return err
			}

			if in.SubjectID != nil {
				course, err := mustCourse(ctx, tx, *in.SubjectID)
				if err != nil {
					return err
				}
				if course.CenterID != in.CenterID {
					return invalidRef("subject %d is not part of center %d", course.ID, in.CenterID)
				}
			}

			if in.LessonID != nil {
				lesson, err := mustLesson(ctx, tx, *in.LessonID)
				if err != nil {
					return err
				}
				if lesson.CenterID != in.CenterID {
					return invalidRef("lesson %d is not part of center %d", lesson.ID, in.CenterID)
				}
				if appt.Duration == 0 && lesson.DurationID != nil {
					d, err := tx.GetDuration(ctx, *lesson.DurationID)
					if err != nil {
						return fmt.Errorf("get duration: %w", err)
					}
					if d != nil {
						appt.Duration = d.Length
					}
				}
			}
			if appt.Duration <= 0 {
				return invalidArg("duration must be positive")
			}

			slot, err := mustSlot(ctx, tx, in.TimeSlotID)
			if err != nil {
				return err
			}
			appt.SlotTime = slot.Time

			if in.TeacherID != nil {
				teacher, err := mustTeacher(ctx, tx, *in.TeacherID)
				if err != nil {
					return err
				}
				if !teacher.BelongsTo(in.CenterID) {
					return invalidRef("teacher %d is not part of center %d", teacher.ID, in.CenterID)
				}
				appt.TeacherName = teacher.Name

				// Блокируем строку учителя до конца транзакции: параллельные записи ждут здесь
				if _, err := tx.LockTeacher(ctx, teacher.ID); err != nil {
					return fmt.Errorf("lock teacher: %w", err)
				}

				conflict, err := hasConflict(ctx, tx, teacher.ID, appt.Day, appt.Interval())
				if err != nil {
					return err
				}
				if conflict {
					return ErrSlotUnavailable
				}

				teacherUser, err := tx.GetUser(ctx, teacher.UserID)
				if err != nil {
					return fmt.Errorf("get teacher user: %w", err)
				}
				if teacherUser != nil {
					teacherChat = teacherUser.TelegramChatID
				}
			}

			if err := tx.CreateAppointment(ctx, appt); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return ErrSlotUnavailable
				}
				return fmt.Errorf("create appointment: %w", err)
			}

			if in.LessonID != nil {
				if err := decrementCapacity(ctx, tx, *in.LessonID); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment created",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("user_id", appt.UserID),
		zap.Int64p("teacher_id", appt.TeacherID),
		zap.Int64p("lesson_id", appt.LessonID),
		zap.Int64("slot_id", appt.TimeSlotID),
		zap.Time("day", appt.Day),
		zap.Duration("duration", appt.Duration),
	)

	s.publish(ctx, model.EventAppointmentBooked, appt, teacherChat)

	return appt, nil
}

// CancelAppointment удаляет запись и возвращает место в урок, если он указан.
func (s *BookingService) CancelAppointment(ctx context.Context, id int64) error {
	var (
		appt        *model.Appointment
		teacherChat *int64
	)

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		appt, err = tx.GetAppointment(ctx, id)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if appt == nil {
			return notFound("appointment")
		}

		deleted, err := tx.DeleteAppointment(ctx, id)
		if err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		if !deleted {
			return notFound("appointment")
		}

		if appt.LessonID != nil {
			if err := incrementCapacity(ctx, tx, *appt.LessonID); err != nil {
				return err
			}
		}

		if appt.TeacherID != nil {
			teacher, err := tx.GetTeacher(ctx, *appt.TeacherID)
			if err != nil {
				return fmt.Errorf("get teacher: %w", err)
			}
			if teacher != nil {
				teacherUser, err := tx.GetUser(ctx, teacher.UserID)
				if err != nil {
					return fmt.Errorf("get teacher user: %w", err)
				}
				if teacherUser != nil {
					teacherChat = teacherUser.TelegramChatID
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Appointment canceled",
		zap.Int64("appointment_id", id),
		zap.Int64p("lesson_id", appt.LessonID),
	)

	s.publish(ctx, model.EventAppointmentCanceled, appt, teacherChat)
	return nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, notFound("appointment")
	}
	return appt, nil
}

// DaySlots returns every catalog slot with its status for the teacher on day.
// A slot is booked when duration starting at it would overlap an appointment.
func (s *BookingService) DaySlots(ctx context.Context, teacherID int64, day time.Time, duration time.Duration) ([]model.SlotAvailability, error) {
	if duration <= 0 {
		return nil, invalidArg("duration must be positive")
	}
	if _, err := mustTeacher(ctx, s.store, teacherID); err != nil {
		return nil, err
	}

	slots, err := s.store.ListTimeSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}

	d := model.NormalizeDay(day)
	booked, err := s.store.ListAppointments(ctx, model.AppointmentFilter{TeacherID: &teacherID, Day: &d})
	if err != nil {
		return nil, fmt.Errorf("list teacher appointments: %w", err)
	}

	result := make([]model.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		want := model.IntervalAt(slot.Time, duration)
		status := model.SlotStatusAvailable
		for _, appt := range booked {
			if appt.Interval().Overlaps(want) {
				status = model.SlotStatusBooked
				break
			}
		}
		result = append(result, model.SlotAvailability{Slot: slot, Status: status})
	}
	return result, nil
}

// withTeacherLock runs fn under the teacher's distributed lock when both a
// locker and a teacher are present. The lock is released as soon as fn returns.
func (s *BookingService) withTeacherLock(ctx context.Context, teacherID *int64, fn func() error) error {
	if teacherID == nil || s.locker == nil {
		return fn()
	}
	release, err := s.lockTeacher(ctx, *teacherID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (s *BookingService) lockTeacher(ctx context.Context, teacherID int64) (func(), error) {
	key := fmt.Sprintf("teacher:%d", teacherID)

	token, err := lock.Acquire(ctx, s.locker, key, s.cfg.LockTTL, s.cfg.LockWait)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.logger.Warn("Teacher lock wait timed out", zap.Int64("teacher_id", teacherID))
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("acquire teacher lock: %w", err)
	}

	return func() {
		// Снимаем блокировку даже если контекст запроса уже отменён
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := s.locker.Unlock(releaseCtx, key, token); err != nil {
			s.logger.Warn("Failed to release teacher lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *BookingService) publish(ctx context.Context, typ model.AppointmentEventType, appt *model.Appointment, teacherChat *int64) {
	event := model.NewAppointmentEvent(typ, *appt, s.now())
	event.TeacherChatID = teacherChat
	event.StudentName = appt.UserName

	// Запись уже закоммичена: отмена запроса не должна обрывать доставку, но и ждать вечно нельзя
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(notifyCtx, event); err != nil {
		s.logger.Error("Failed to publish appointment event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(typ)),
			zap.Int64("appointment_id", appt.ID),
			zap.Error(err),
		)
	}
}
