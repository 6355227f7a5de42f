package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCenterFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loose := f.newTeacher(t, "loose@example.com", "Lou", nil)
	nobody := f.user(t, "nobody@example.com", "Nobody")

	tests := []struct {
		name     string
		userID   int64
		wantRole model.Role
		wantErr  string
	}{
		{name: "student", userID: f.student.UserID, wantRole: model.RoleStudent},
		{name: "teacher", userID: f.teacher.UserID, wantRole: model.RoleTeacher},
		{name: "owner", userID: f.owner.ID, wantRole: model.RoleCenter},
		{name: "teacher without center", userID: loose.UserID, wantErr: "center not found"},
		{name: "unaffiliated", userID: nobody.ID, wantErr: "center not found"},
		{name: "unknown user", userID: 9999, wantErr: "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, role, err := f.directory.ResolveCenterFor(ctx, tt.userID)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.center.ID, center.ID)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestResolveCenterFor_StudentWinsOverOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &model.Center{Name: "South"}
	require.NoError(t, f.directory.CreateCenter(ctx, other))

	// the owner of North also studies in South
	require.NoError(t, f.directory.CreateStudent(ctx, &model.Student{UserID: f.owner.ID, CenterID: other.ID}))

	center, role, err := f.directory.ResolveCenterFor(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, center.ID)
	assert.Equal(t, model.RoleStudent, role)
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.directory.Enroll(ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	_, err = f.directory.Enroll(ctx, f.student.ID, f.course.ID)
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)
	assert.Equal(t, 1, f.store.enrollmentCount())

	_, err = f.directory.Enroll(ctx, f.student2.ID, f.course.ID)
	require.NoError(t, err)

	_, err = f.directory.Enroll(ctx, 9999, f.course.ID)
	assert.EqualError(t, err, "student not found")

	_, err = f.directory.Enroll(ctx, f.student.ID, 9999)
	assert.EqualError(t, err, "subject not found")
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := &model.User{Email: "  new@example.com ", Name: " New "}
	require.NoError(t, f.directory.CreateUser(ctx, u))
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "New", u.Name)

	err := f.directory.CreateUser(ctx, &model.User{Email: "new@example.com", Name: "Again"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.directory.CreateUser(ctx, &model.User{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateCenter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.directory.CreateCenter(ctx, &model.Center{Name: " "}), ErrInvalidArgument)

	missing := int64(9999)
	err := f.directory.CreateCenter(ctx, &model.Center{Name: "X", OwnerUserID: &missing})
	assert.EqualError(t, err, "user not found")

	err = f.directory.CreateCenter(ctx, &model.Center{Name: "Second", OwnerUserID: &f.owner.ID})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateCourseLinksTeachers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := &model.Course{CenterID: f.center.ID, Title: " Physics "}
	require.NoError(t, f.directory.CreateCourse(ctx, course, []int64{f.teacher.ID}))
	assert.Equal(t, "Physics", course.Title)

	courses, err := f.directory.CoursesOf(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID, courses[0].ID)

	err = f.directory.CreateCourse(ctx, &model.Course{CenterID: f.center.ID, Title: "Chem"}, []int64{9999})
	assert.EqualError(t, err, "teacher not found")
}

func TestTeacherLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.directory.GetTeacher(ctx, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tom Teacher", got.Name)

	teachers, err := f.directory.ListTeachers(ctx, f.center.ID)
	require.NoError(t, err)
	require.Len(t, teachers, 1)

	_, err = f.directory.ListTeachers(ctx, 9999)
	assert.EqualError(t, err, "center not found")
}
