package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistent record store the services work against.
// Lookups return (nil, nil) when the row does not exist.
type Store interface {
	// Atomic runs fn inside one transaction. Any error rolls everything back.
	// Nested calls join the outer transaction.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)

	CreateCenter(ctx context.Context, center *model.Center) error
	GetCenter(ctx context.Context, id int64) (*model.Center, error)
	GetCenterByOwner(ctx context.Context, userID int64) (*model.Center, error)

	CreateTeacher(ctx context.Context, teacher *model.Teacher) error
	GetTeacher(ctx context.Context, id int64) (*model.Teacher, error)
	GetTeacherByUser(ctx context.Context, userID int64) (*model.Teacher, error)
	LockTeacher(ctx context.Context, id int64) (bool, error)
	ListTeachersByCenter(ctx context.Context, centerID int64) ([]*model.Teacher, error)
	ListTeachersByCourse(ctx context.Context, courseID int64) ([]*model.Teacher, error)
	ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]*model.Course, error)
	AddCourseTeacher(ctx context.Context, courseID, teacherID int64) (bool, error)

	CreateStudent(ctx context.Context, student *model.Student) error
	GetStudent(ctx context.Context, id int64) (*model.Student, error)
	GetStudentByUser(ctx context.Context, userID int64) (*model.Student, error)

	CreateCourse(ctx context.Context, course *model.Course) error
	GetCourse(ctx context.Context, id int64) (*model.Course, error)

	CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error
	EnrollmentExists(ctx context.Context, studentID, courseID int64) (bool, error)

	UpsertTimeSlot(ctx context.Context, slot *model.TimeSlot) error
	GetTimeSlot(ctx context.Context, id int64) (*model.TimeSlot, error)
	ListTimeSlots(ctx context.Context) ([]*model.TimeSlot, error)

	CreateDuration(ctx context.Context, d *model.Duration) error
	GetDuration(ctx context.Context, id int64) (*model.Duration, error)
	ListDurations(ctx context.Context) ([]*model.Duration, error)

	CreateLesson(ctx context.Context, lesson *model.Lesson) error
	UpdateLesson(ctx context.Context, lesson *model.Lesson) (bool, error)
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	ListLessons(ctx context.Context, filter model.LessonFilter) ([]*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) (bool, error)
	DecrementLessonCapacity(ctx context.Context, id int64) (bool, error)
	IncrementLessonCapacity(ctx context.Context, id int64) (bool, error)
	ListLessonWeekdaysBySubject(ctx context.Context, subjectID int64) ([]time.Weekday, error)

	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) (bool, error)
	ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
}

// PostgresStore implements Store over a pgx pool or an open transaction.
type PostgresStore struct {
	pool *pgxpool.Pool // nil inside a transaction

	users        *UserRepository
	centers      *CenterRepository
	teachers     *TeacherRepository
	students     *StudentRepository
	courses      *CourseRepository
	enrollments  *EnrollmentRepository
	slots        *SlotRepository
	durations    *DurationRepository
	lessons      *LessonRepository
	appointments *AppointmentRepository
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return newPostgresStore(pool, pool)
}

func newPostgresStore(pool *pgxpool.Pool, db base.DBTX) *PostgresStore {
	return &PostgresStore{
		pool:         pool,
		users:        NewUserRepository(db),
		centers:      NewCenterRepository(db),
		teachers:     NewTeacherRepository(db),
		students:     NewStudentRepository(db),
		courses:      NewCourseRepository(db),
		enrollments:  NewEnrollmentRepository(db),
		slots:        NewSlotRepository(db),
		durations:    NewDurationRepository(db),
		lessons:      NewLessonRepository(db),
		appointments: NewAppointmentRepository(db),
	}
}

func (s *PostgresStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	// Начинаем транзакцию
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newPostgresStore(nil, tx)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.users.Create(ctx, user)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *PostgresStore) CreateCenter(ctx context.Context, center *model.Center) error {
	return s.centers.Create(ctx, center)
}

func (s *PostgresStore) GetCenter(ctx context.Context, id int64) (*model.Center, error) {
	return s.centers.GetByID(ctx, id)
}

func (s *PostgresStore) GetCenterByOwner(ctx context.Context, userID int64) (*model.Center, error) {
	return s.centers.GetByOwner(ctx, userID)
}

func (s *PostgresStore) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	return s.teachers.Create(ctx, teacher)
}

func (s *PostgresStore) GetTeacher(ctx context.Context, id int64) (*model.Teacher, error) {
	return s.teachers.GetByID(ctx, id)
}

func (s *PostgresStore) GetTeacherByUser(ctx context.Context, userID int64) (*model.Teacher, error) {
	return s.teachers.GetByUserID(ctx, userID)
}

func (s *PostgresStore) LockTeacher(ctx context.Context, id int64) (bool, error) {
	return s.teachers.LockForUpdate(ctx, id)
}

func (s *PostgresStore) ListTeachersByCenter(ctx context.Context, centerID int64) ([]*model.Teacher, error) {
	return s.teachers.ListByCenter(ctx, centerID)
}

func (s *PostgresStore) ListTeachersByCourse(ctx context.Context, courseID int64) ([]*model.Teacher, error) {
	return s.teachers.ListByCourse(ctx, courseID)
}

func (s *PostgresStore) ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]*model.Course, error) {
	return s.courses.ListByTeacher(ctx, teacherID)
}

func (s *PostgresStore) AddCourseTeacher(ctx context.Context, courseID, teacherID int64) (bool, error) {
	return s.teachers.AddCourse(ctx, courseID, teacherID)
}

func (s *PostgresStore) CreateStudent(ctx context.Context, student *model.Student) error {
	return s.students.Create(ctx, student)
}

func (s *PostgresStore) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *PostgresStore) GetStudentByUser(ctx context.Context, userID int64) (*model.Student, error) {
	return s.students.GetByUserID(ctx, userID)
}

func (s *PostgresStore) CreateCourse(ctx context.Context, course *model.Course) error {
	return s.courses.Create(ctx, course)
}

func (s *PostgresStore) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *PostgresStore) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	return s.enrollments.Create(ctx, enrollment)
}

func (s *PostgresStore) EnrollmentExists(ctx context.Context, studentID, courseID int64) (bool, error) {
	return s.enrollments.Exists(ctx, studentID, courseID)
}

func (s *PostgresStore) UpsertTimeSlot(ctx context.Context, slot *model.TimeSlot) error {
	return s.slots.Upsert(ctx, slot)
}

func (s *PostgresStore) GetTimeSlot(ctx context.Context, id int64) (*model.TimeSlot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *PostgresStore) ListTimeSlots(ctx context.Context) ([]*model.TimeSlot, error) {
	return s.slots.List(ctx)
}

func (s *PostgresStore) CreateDuration(ctx context.Context, d *model.Duration) error {
	return s.durations.Create(ctx, d)
}

func (s *PostgresStore) GetDuration(ctx context.Context, id int64) (*model.Duration, error) {
	return s.durations.GetByID(ctx, id)
}

func (s *PostgresStore) ListDurations(ctx context.Context) ([]*model.Duration, error) {
	return s.durations.List(ctx)
}

func (s *PostgresStore) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return s.lessons.Create(ctx, lesson)
}

func (s *PostgresStore) UpdateLesson(ctx context.Context, lesson *model.Lesson) (bool, error) {
	return s.lessons.Update(ctx, lesson)
}

func (s *PostgresStore) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, id)
}

func (s *PostgresStore) ListLessons(ctx context.Context, filter model.LessonFilter) ([]*model.Lesson, error) {
	return s.lessons.List(ctx, filter)
}

func (s *PostgresStore) DeleteLesson(ctx context.Context, id int64) (bool, error) {
	return s.lessons.Delete(ctx, id)
}

func (s *PostgresStore) DecrementLessonCapacity(ctx context.Context, id int64) (bool, error) {
	return s.lessons.DecrementCapacity(ctx, id)
}

func (s *PostgresStore) IncrementLessonCapacity(ctx context.Context, id int64) (bool, error) {
	return s.lessons.IncrementCapacity(ctx, id)
}

func (s *PostgresStore) ListLessonWeekdaysBySubject(ctx context.Context, subjectID int64) ([]time.Weekday, error) {
	return s.lessons.ListWeekdaysBySubject(ctx, subjectID)
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	return s.appointments.Create(ctx, appt)
}

func (s *PostgresStore) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *PostgresStore) DeleteAppointment(ctx context.Context, id int64) (bool, error) {
	return s.appointments.Delete(ctx, id)
}

func (s *PostgresStore) ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filter)
}
