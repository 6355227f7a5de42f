package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
)

// memStore is an in-memory repository.Store. Atomic serializes transactions
// and restores a snapshot when fn fails, which is enough to observe
// all-or-nothing behaviour in tests.
type memStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	nextID         int64
	users          map[int64]model.User
	centers        map[int64]model.Center
	teachers       map[int64]model.Teacher
	students       map[int64]model.Student
	courses        map[int64]model.Course
	courseTeachers map[[2]int64]bool
	enrollments    map[int64]model.Enrollment
	slots          map[int64]model.TimeSlot
	durations      map[int64]model.Duration
	lessons        map[int64]model.Lesson
	appointments   map[int64]model.Appointment
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		data: &memData{
			users:          map[int64]model.User{},
			centers:        map[int64]model.Center{},
			teachers:       map[int64]model.Teacher{},
			students:       map[int64]model.Student{},
			courses:        map[int64]model.Course{},
			courseTeachers: map[[2]int64]bool{},
			enrollments:    map[int64]model.Enrollment{},
			slots:          map[int64]model.TimeSlot{},
			durations:      map[int64]model.Duration{},
			lessons:        map[int64]model.Lesson{},
			appointments:   map[int64]model.Appointment{},
		},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		nextID:         d.nextID,
		users:          cloneMap(d.users),
		centers:        cloneMap(d.centers),
		teachers:       cloneMap(d.teachers),
		students:       cloneMap(d.students),
		courses:        cloneMap(d.courses),
		courseTeachers: cloneMap(d.courseTeachers),
		enrollments:    cloneMap(d.enrollments),
		slots:          cloneMap(d.slots),
		durations:      cloneMap(d.durations),
		lessons:        cloneMap(d.lessons),
		appointments:   cloneMap(d.appointments),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) guard() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *memStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&memStore{mu: s.mu, data: s.data, inTx: true}); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func conflict(what string) error {
	return fmt.Errorf("create %s: %w", what, repository.ErrConflict)
}

func getOne[V any](m map[int64]V, id int64) (*V, error) {
	v, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *memStore) CreateUser(_ context.Context, user *model.User) error {
	defer s.guard()()
	for _, u := range s.data.users {
		if u.Email == user.Email {
			return conflict("user")
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.data.users[user.ID] = *user
	return nil
}

func (s *memStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	defer s.guard()()
	return getOne(s.data.users, id)
}

func (s *memStore) CreateCenter(_ context.Context, center *model.Center) error {
	defer s.guard()()
	if center.OwnerUserID != nil {
		for _, c := range s.data.centers {
			if c.OwnerUserID != nil && *c.OwnerUserID == *center.OwnerUserID {
				return conflict("center")
			}
		}
	}
	center.ID = s.id()
	center.CreatedAt = time.Now()
	s.data.centers[center.ID] = *center
	return nil
}

func (s *memStore) GetCenter(_ context.Context, id int64) (*model.Center, error) {
	defer s.guard()()
	return getOne(s.data.centers, id)
}

func (s *memStore) GetCenterByOwner(_ context.Context, userID int64) (*model.Center, error) {
	defer s.guard()()
	for _, c := range s.data.centers {
		if c.OwnerUserID != nil && *c.OwnerUserID == userID {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) withTeacherName(t model.Teacher) *model.Teacher {
	t.Name = s.data.users[t.UserID].Name
	return &t
}

func (s *memStore) CreateTeacher(_ context.Context, teacher *model.Teacher) error {
	defer s.guard()()
	for _, t := range s.data.teachers {
		if t.UserID == teacher.UserID {
			return conflict("teacher")
		}
	}
	teacher.ID = s.id()
	teacher.CreatedAt = time.Now()
	s.data.teachers[teacher.ID] = *teacher
	return nil
}

func (s *memStore) GetTeacher(_ context.Context, id int64) (*model.Teacher, error) {
	defer s.guard()()
	t, ok := s.data.teachers[id]
	if !ok {
		return nil, nil
	}
	return s.withTeacherName(t), nil
}

func (s *memStore) GetTeacherByUser(_ context.Context, userID int64) (*model.Teacher, error) {
	defer s.guard()()
	for _, t := range s.data.teachers {
		if t.UserID == userID {
			return s.withTeacherName(t), nil
		}
	}
	return nil, nil
}

func (s *memStore) LockTeacher(_ context.Context, id int64) (bool, error) {
	defer s.guard()()
	_, ok := s.data.teachers[id]
	return ok, nil
}

func (s *memStore) sortedTeachers(keep func(model.Teacher) bool) []*model.Teacher {
	var out []*model.Teacher
	for _, t := range s.data.teachers {
		if keep(t) {
			out = append(out, s.withTeacherName(t))
		}
	}
	slices.SortFunc(out, func(a, b *model.Teacher) int { return int(a.ID - b.ID) })
	return out
}

func (s *memStore) ListTeachersByCenter(_ context.Context, centerID int64) ([]*model.Teacher, error) {
	defer s.guard()()
	return s.sortedTeachers(func(t model.Teacher) bool { return t.BelongsTo(centerID) }), nil
}

func (s *memStore) ListTeachersByCourse(_ context.Context, courseID int64) ([]*model.Teacher, error) {
	defer s.guard()()
	return s.sortedTeachers(func(t model.Teacher) bool { return s.data.courseTeachers[[2]int64{courseID, t.ID}] }), nil
}

func (s *memStore) ListCoursesByTeacher(_ context.Context, teacherID int64) ([]*model.Course, error) {
	defer s.guard()()
	var out []*model.Course
	for _, c := range s.data.courses {
		if s.data.courseTeachers[[2]int64{c.ID, teacherID}] {
			c := c
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *model.Course) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *memStore) AddCourseTeacher(_ context.Context, courseID, teacherID int64) (bool, error) {
	defer s.guard()()
	key := [2]int64{courseID, teacherID}
	if s.data.courseTeachers[key] {
		return false, nil
	}
	s.data.courseTeachers[key] = true
	return true, nil
}

func (s *memStore) CreateStudent(_ context.Context, student *model.Student) error {
	defer s.guard()()
	for _, st := range s.data.students {
		if st.UserID == student.UserID {
			return conflict("student")
		}
	}
	student.ID = s.id()
	student.CreatedAt = time.Now()
	s.data.students[student.ID] = *student
	return nil
}

func (s *memStore) GetStudent(_ context.Context, id int64) (*model.Student, error) {
	defer s.guard()()
	st, ok := s.data.students[id]
	if !ok {
		return nil, nil
	}
	st.Name = s.data.users[st.UserID].Name
	return &st, nil
}

func (s *memStore) GetStudentByUser(_ context.Context, userID int64) (*model.Student, error) {
	defer s.guard()()
	for _, st := range s.data.students {
		if st.UserID == userID {
			st.Name = s.data.users[st.UserID].Name
			return &st, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateCourse(_ context.Context, course *model.Course) error {
	defer s.guard()()
	course.ID = s.id()
	course.CreatedAt = time.Now()
	s.data.courses[course.ID] = *course
	return nil
}

func (s *memStore) GetCourse(_ context.Context, id int64) (*model.Course, error) {
	defer s.guard()()
	return getOne(s.data.courses, id)
}

func (s *memStore) CreateEnrollment(_ context.Context, e *model.Enrollment) error {
	defer s.guard()()
	for _, x := range s.data.enrollments {
		if x.StudentID == e.StudentID && x.CourseID == e.CourseID {
			return conflict("enrollment")
		}
	}
	e.ID = s.id()
	e.EnrolledAt = time.Now()
	s.data.enrollments[e.ID] = *e
	return nil
}

func (s *memStore) EnrollmentExists(_ context.Context, studentID, courseID int64) (bool, error) {
	defer s.guard()()
	for _, x := range s.data.enrollments {
		if x.StudentID == studentID && x.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpsertTimeSlot(_ context.Context, slot *model.TimeSlot) error {
	defer s.guard()()
	for _, existing := range s.data.slots {
		if existing.Time == slot.Time {
			*slot = existing
			return nil
		}
	}
	slot.ID = s.id()
	slot.CreatedAt = time.Now()
	s.data.slots[slot.ID] = *slot
	return nil
}

func (s *memStore) GetTimeSlot(_ context.Context, id int64) (*model.TimeSlot, error) {
	defer s.guard()()
	return getOne(s.data.slots, id)
}

func (s *memStore) ListTimeSlots(_ context.Context) ([]*model.TimeSlot, error) {
	defer s.guard()()
	var out []*model.TimeSlot
	for _, slot := range s.data.slots {
		slot := slot
		out = append(out, &slot)
	}
	slices.SortFunc(out, func(a, b *model.TimeSlot) int { return int(a.Time) - int(b.Time) })
	return out, nil
}

func (s *memStore) CreateDuration(_ context.Context, d *model.Duration) error {
	defer s.guard()()
	d.ID = s.id()
	d.CreatedAt = time.Now()
	s.data.durations[d.ID] = *d
	return nil
}

func (s *memStore) GetDuration(_ context.Context, id int64) (*model.Duration, error) {
	defer s.guard()()
	return getOne(s.data.durations, id)
}

func (s *memStore) ListDurations(_ context.Context) ([]*model.Duration, error) {
	defer s.guard()()
	var out []*model.Duration
	for _, d := range s.data.durations {
		d := d
		out = append(out, &d)
	}
	slices.SortFunc(out, func(a, b *model.Duration) int {
		if a.Length != b.Length {
			return int(a.Length - b.Length)
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (s *memStore) CreateLesson(_ context.Context, lesson *model.Lesson) error {
	defer s.guard()()
	lesson.ID = s.id()
	lesson.CreatedAt = time.Now()
	s.data.lessons[lesson.ID] = *lesson
	return nil
}

func (s *memStore) UpdateLesson(_ context.Context, lesson *model.Lesson) (bool, error) {
	defer s.guard()()
	old, ok := s.data.lessons[lesson.ID]
	if !ok {
		return false, nil
	}
	lesson.CreatedAt = old.CreatedAt
	s.data.lessons[lesson.ID] = *lesson
	return true, nil
}

func (s *memStore) GetLesson(_ context.Context, id int64) (*model.Lesson, error) {
	defer s.guard()()
	return getOne(s.data.lessons, id)
}

func (s *memStore) ListLessons(_ context.Context, f model.LessonFilter) ([]*model.Lesson, error) {
	defer s.guard()()
	var out []*model.Lesson
	for _, l := range s.data.lessons {
		if f.CenterID != nil && l.CenterID != *f.CenterID {
			continue
		}
		if f.SubjectID != nil && !slices.Contains(l.SubjectIDs, *f.SubjectID) {
			continue
		}
		if f.TeacherID != nil && !slices.Contains(l.TeacherIDs, *f.TeacherID) {
			continue
		}
		l := l
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *model.Lesson) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (s *memStore) DeleteLesson(_ context.Context, id int64) (bool, error) {
	defer s.guard()()
	if _, ok := s.data.lessons[id]; !ok {
		return false, nil
	}
	delete(s.data.lessons, id)
	for apptID, a := range s.data.appointments {
		if a.LessonID != nil && *a.LessonID == id {
			a.LessonID = nil
			s.data.appointments[apptID] = a
		}
	}
	return true, nil
}

func (s *memStore) DecrementLessonCapacity(_ context.Context, id int64) (bool, error) {
	defer s.guard()()
	l, ok := s.data.lessons[id]
	if !ok || l.MaxStudents <= 0 {
		return false, nil
	}
	l.MaxStudents--
	s.data.lessons[id] = l
	return true, nil
}

func (s *memStore) IncrementLessonCapacity(_ context.Context, id int64) (bool, error) {
	defer s.guard()()
	l, ok := s.data.lessons[id]
	if !ok {
		return false, nil
	}
	l.MaxStudents++
	s.data.lessons[id] = l
	return true, nil
}

func (s *memStore) ListLessonWeekdaysBySubject(_ context.Context, subjectID int64) ([]time.Weekday, error) {
	defer s.guard()()
	seen := map[time.Weekday]bool{}
	var out []time.Weekday
	for _, a := range s.data.appointments {
		if a.SubjectID == nil || *a.SubjectID != subjectID || a.LessonID == nil {
			continue
		}
		l, ok := s.data.lessons[*a.LessonID]
		if !ok || l.Weekday == nil || seen[*l.Weekday] {
			continue
		}
		seen[*l.Weekday] = true
		out = append(out, *l.Weekday)
	}
	slices.Sort(out)
	return out, nil
}

func (s *memStore) joinAppointment(a model.Appointment) *model.Appointment {
	a.SlotTime = s.data.slots[a.TimeSlotID].Time
	a.UserName = s.data.users[a.UserID].Name
	if a.TeacherID != nil {
		a.TeacherName = s.data.users[s.data.teachers[*a.TeacherID].UserID].Name
	}
	return &a
}

func (s *memStore) CreateAppointment(_ context.Context, appt *model.Appointment) error {
	defer s.guard()()
	if appt.TeacherID != nil {
		for _, a := range s.data.appointments {
			if a.TeacherID != nil && *a.TeacherID == *appt.TeacherID &&
				a.Day.Equal(appt.Day) && a.TimeSlotID == appt.TimeSlotID {
				return conflict("appointment")
			}
		}
	}
	appt.ID = s.id()
	appt.CreatedAt = time.Now()
	stored := *appt
	stored.SlotTime, stored.UserName, stored.TeacherName = 0, "", ""
	s.data.appointments[appt.ID] = stored
	return nil
}

func (s *memStore) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	defer s.guard()()
	a, ok := s.data.appointments[id]
	if !ok {
		return nil, nil
	}
	return s.joinAppointment(a), nil
}

func (s *memStore) DeleteAppointment(_ context.Context, id int64) (bool, error) {
	defer s.guard()()
	if _, ok := s.data.appointments[id]; !ok {
		return false, nil
	}
	delete(s.data.appointments, id)
	return true, nil
}

func (s *memStore) ListAppointments(_ context.Context, f model.AppointmentFilter) ([]*model.Appointment, error) {
	defer s.guard()()
	match := func(filter *int64, value *int64) bool {
		return filter == nil || (value != nil && *value == *filter)
	}

	var out []*model.Appointment
	for _, a := range s.data.appointments {
		if !match(f.UserID, &a.UserID) || !match(f.TeacherID, a.TeacherID) ||
			!match(f.CenterID, &a.CenterID) || !match(f.SubjectID, a.SubjectID) {
			continue
		}
		if f.Day != nil && !a.Day.Equal(model.NormalizeDay(*f.Day)) {
			continue
		}
		out = append(out, s.joinAppointment(a))
	}
	slices.SortFunc(out, func(a, b *model.Appointment) int {
		if c := a.Day.Compare(b.Day); c != 0 {
			return c
		}
		if a.SlotTime != b.SlotTime {
			return int(a.SlotTime) - int(b.SlotTime)
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

// count helpers for assertions

func (s *memStore) appointmentCount() int {
	defer s.guard()()
	return len(s.data.appointments)
}

func (s *memStore) enrollmentCount() int {
	defer s.guard()()
	return len(s.data.enrollments)
}

func (s *memStore) courseTeacherCount() int {
	defer s.guard()()
	return len(s.data.courseTeachers)
}
