package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDay = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.AppointmentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, e model.AppointmentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) Events() []model.AppointmentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.AppointmentEvent(nil), n.events...)
}

// fixture is one center with an owner, a teacher, two students, a course and
// a few catalog slots.
type fixture struct {
	store *memStore
	notes *recordingNotifier

	directory *DirectoryService
	slots     *SlotService
	lessons   *LessonService
	booking   *BookingService
	queries   *QueryService

	owner    *model.User
	center   *model.Center
	teacher  *model.Teacher
	student  *model.Student
	student2 *model.Student
	course   *model.Course

	slot0830 *model.TimeSlot
	slot0900 *model.TimeSlot
	slot1000 *model.TimeSlot
	slot1100 *model.TimeSlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	log := zap.NewNop()
	store := newMemStore()
	notes := &recordingNotifier{}

	f := &fixture{
		store:     store,
		notes:     notes,
		directory: NewDirectoryService(store, log),
		slots:     NewSlotService(store, log),
		lessons:   NewLessonService(store, log),
		booking:   NewBookingService(store, nil, notes, BookingConfig{}, log),
		queries:   NewQueryService(store, nil, log),
	}

	f.owner = f.user(t, "owner@example.com", "Olga Owner")
	f.center = &model.Center{Name: "North", OwnerUserID: &f.owner.ID}
	require.NoError(t, f.directory.CreateCenter(ctx, f.center))

	f.teacher = f.newTeacher(t, "teacher@example.com", "Tom Teacher", &f.center.ID)
	f.student = f.newStudent(t, "s1@example.com", "Sam Student")
	f.student2 = f.newStudent(t, "s2@example.com", "Sue Student")

	f.course = &model.Course{CenterID: f.center.ID, Title: "Math"}
	require.NoError(t, f.directory.CreateCourse(ctx, f.course, nil))

	f.slot0830 = f.slot(t, 8, 30)
	f.slot0900 = f.slot(t, 9, 0)
	f.slot1000 = f.slot(t, 10, 0)
	f.slot1100 = f.slot(t, 11, 0)

	return f
}

func (f *fixture) user(t *testing.T, email, name string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: name}
	require.NoError(t, f.directory.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) newTeacher(t *testing.T, email, name string, centerID *int64) *model.Teacher {
	t.Helper()
	u := f.user(t, email, name)
	teacher := &model.Teacher{UserID: u.ID, CenterID: centerID}
	require.NoError(t, f.directory.CreateTeacher(context.Background(), teacher))
	return teacher
}

func (f *fixture) newStudent(t *testing.T, email, name string) *model.Student {
	t.Helper()
	u := f.user(t, email, name)
	student := &model.Student{UserID: u.ID, CenterID: f.center.ID}
	require.NoError(t, f.directory.CreateStudent(context.Background(), student))
	return student
}

func (f *fixture) slot(t *testing.T, hour, minute int) *model.TimeSlot {
	t.Helper()
	at, err := model.NewTimeOfDay(hour, minute, 0)
	require.NoError(t, err)
	slot, err := f.slots.CreateSlot(context.Background(), at)
	require.NoError(t, err)
	return slot
}

func (f *fixture) lesson(t *testing.T, maxStudents int, days int) *model.Lesson {
	t.Helper()
	l, err := f.lessons.CreateLesson(context.Background(), CreateLessonInput{
		CenterID:     f.center.ID,
		TeacherIDs:   []int64{f.teacher.ID},
		SubjectIDs:   []int64{f.course.ID},
		SlotIDs:      []int64{f.slot0900.ID},
		DurationDays: &days,
		MaxStudents:  maxStudents,
	})
	require.NoError(t, err)
	return l
}

// book creates an appointment for the fixture teacher on testDay.
func (f *fixture) book(userID int64, slot *model.TimeSlot, d time.Duration, lessonID *int64) (*model.Appointment, error) {
	return f.booking.CreateAppointment(context.Background(), CreateAppointmentInput{
		UserID:     userID,
		TeacherID:  &f.teacher.ID,
		CenterID:   f.center.ID,
		LessonID:   lessonID,
		TimeSlotID: slot.ID,
		Day:        testDay,
		Duration:   d,
	})
}
