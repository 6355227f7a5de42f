package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"go.uber.org/zap"
)

// DirectoryService owns centers, people, courses and enrollments.
type DirectoryService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewDirectoryService(store repository.Store, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		store:  store,
		logger: logger,
	}
}

// ResolveCenterFor определяет центр пользователя и роль, в которой он в нём состоит.
// Проверяем по порядку: студент, учитель, владелец центра.
func (s *DirectoryService) ResolveCenterFor(ctx context.Context, userID int64) (*model.Center, model.Role, error) {
	return resolveCenter(ctx, s.store, userID)
}

func resolveCenter(ctx context.Context, store repository.Store, userID int64) (*model.Center, model.Role, error) {
	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, "", notFound("user")
	}

	student, err := store.GetStudentByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("get student: %w", err)
	}
	if student != nil {
		center, err := mustCenter(ctx, store, student.CenterID)
		if err != nil {
			return nil, "", err
		}
		return center, model.RoleStudent, nil
	}

	teacher, err := store.GetTeacherByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("get teacher: %w", err)
	}
	if teacher != nil {
		if teacher.CenterID == nil {
			return nil, "", notFound("center")
		}
		center, err := mustCenter(ctx, store, *teacher.CenterID)
		if err != nil {
			return nil, "", err
		}
		return center, model.RoleTeacher, nil
	}

	center, err := store.GetCenterByOwner(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("get owned center: %w", err)
	}
	if center == nil {
		return nil, "", notFound("center")
	}

	return center, model.RoleCenter, nil
}

// TeachersOf returns the teachers associated with a course.
func (s *DirectoryService) TeachersOf(ctx context.Context, courseID int64) ([]*model.Teacher, error) {
	if _, err := mustCourse(ctx, s.store, courseID); err != nil {
		return nil, err
	}

	teachers, err := s.store.ListTeachersByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list teachers by course: %w", err)
	}

	return teachers, nil
}

// CoursesOf returns the courses a teacher is associated with.
func (s *DirectoryService) CoursesOf(ctx context.Context, teacherID int64) ([]*model.Course, error) {
	if _, err := mustTeacher(ctx, s.store, teacherID); err != nil {
		return nil, err
	}

	courses, err := s.store.ListCoursesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list courses by teacher: %w", err)
	}

	return courses, nil
}

// Enroll записывает студента на курс. Повторная запись запрещена.
func (s *DirectoryService) Enroll(ctx context.Context, studentID, courseID int64) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{StudentID: studentID, CourseID: courseID}

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := mustStudent(ctx, tx, studentID); err != nil {
			return err
		}
		if _, err := mustCourse(ctx, tx, courseID); err != nil {
			return err
		}

		exists, err := tx.EnrollmentExists(ctx, studentID, courseID)
		if err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if exists {
			return ErrDuplicateEnrollment
		}

		if err := tx.CreateEnrollment(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrDuplicateEnrollment
			}
			return fmt.Errorf("create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("course_id", courseID),
	)

	return enrollment, nil
}

func (s *DirectoryService) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if user.Email == "" {
		return invalidArg("email is required")
	}
	if user.Name == "" {
		return invalidArg("name is required")
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return invalidArg("email %q is already registered", user.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func (s *DirectoryService) CreateCenter(ctx context.Context, center *model.Center) error {
	center.Name = strings.TrimSpace(center.Name)
	if center.Name == "" {
		return invalidArg("center name is required")
	}

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if center.OwnerUserID != nil {
			if _, err := mustUser(ctx, tx, *center.OwnerUserID); err != nil {
				return err
			}
		}
		if err := tx.CreateCenter(ctx, center); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return invalidArg("user already owns a center")
			}
			return fmt.Errorf("create center: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Center created", zap.Int64("center_id", center.ID), zap.String("name", center.Name))
	return nil
}

func (s *DirectoryService) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := mustUser(ctx, tx, teacher.UserID)
		if err != nil {
			return err
		}
		if teacher.CenterID != nil {
			if _, err := mustCenter(ctx, tx, *teacher.CenterID); err != nil {
				return err
			}
		}
		if err := tx.CreateTeacher(ctx, teacher); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return invalidArg("user %d is already a teacher", teacher.UserID)
			}
			return fmt.Errorf("create teacher: %w", err)
		}
		teacher.Name = user.Name
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Teacher created", zap.Int64("teacher_id", teacher.ID), zap.Int64("user_id", teacher.UserID))
	return nil
}

func (s *DirectoryService) CreateStudent(ctx context.Context, student *model.Student) error {
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		user, err := mustUser(ctx, tx, student.UserID)
		if err != nil {
			return err
		}
		if _, err := mustCenter(ctx, tx, student.CenterID); err != nil {
			return err
		}
		if err := tx.CreateStudent(ctx, student); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return invalidArg("user %d is already a student", student.UserID)
			}
			return fmt.Errorf("create student: %w", err)
		}
		student.Name = user.Name
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Student created", zap.Int64("student_id", student.ID), zap.Int64("center_id", student.CenterID))
	return nil
}

// CreateCourse creates a course and links the given teachers to it.
func (s *DirectoryService) CreateCourse(ctx context.Context, course *model.Course, teacherIDs []int64) error {
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		return invalidArg("course title is required")
	}

	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := mustCenter(ctx, tx, course.CenterID); err != nil {
			return err
		}
		for _, id := range teacherIDs {
			if _, err := mustTeacher(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := tx.CreateCourse(ctx, course); err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		for _, id := range teacherIDs {
			if _, err := tx.AddCourseTeacher(ctx, course.ID, id); err != nil {
				return fmt.Errorf("link course teacher: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Course created",
		zap.Int64("course_id", course.ID),
		zap.Int64("center_id", course.CenterID),
		zap.Int("teachers", len(teacherIDs)),
	)
	return nil
}

func (s *DirectoryService) GetTeacher(ctx context.Context, id int64) (*model.Teacher, error) {
	return mustTeacher(ctx, s.store, id)
}

func (s *DirectoryService) ListTeachers(ctx context.Context, centerID int64) ([]*model.Teacher, error) {
	if _, err := mustCenter(ctx, s.store, centerID); err != nil {
		return nil, err
	}

	teachers, err := s.store.ListTeachersByCenter(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("list teachers by center: %w", err)
	}
	return teachers, nil
}

func mustUser(ctx context.Context, store repository.Store, id int64) (*model.User, error) {
	user, err := store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

func mustCenter(ctx context.Context, store repository.Store, id int64) (*model.Center, error) {
	center, err := store.GetCenter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get center: %w", err)
	}
	if center == nil {
		return nil, notFound("center")
	}
	return center, nil
}

func mustTeacher(ctx context.Context, store repository.Store, id int64) (*model.Teacher, error) {
	teacher, err := store.GetTeacher(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, notFound("teacher")
	}
	return teacher, nil
}

func mustStudent(ctx context.Context, store repository.Store, id int64) (*model.Student, error) {
	student, err := store.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, notFound("student")
	}
	return student, nil
}

func mustCourse(ctx context.Context, store repository.Store, id int64) (*model.Course, error) {
	course, err := store.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, notFound("subject")
	}
	return course, nil
}

func mustSlot(ctx context.Context, store repository.Store, id int64) (*model.TimeSlot, error) {
	slot, err := store.GetTimeSlot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get time slot: %w", err)
	}
	if slot == nil {
		return nil, notFound("time slot")
	}
	return slot, nil
}

func mustLesson(ctx context.Context, store repository.Store, id int64) (*model.Lesson, error) {
	lesson, err := store.GetLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, notFound("lesson")
	}
	return lesson, nil
}
