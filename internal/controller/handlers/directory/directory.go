package directory

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Directory interface {
	CreateUser(ctx context.Context, user *model.User) error
	CreateCenter(ctx context.Context, center *model.Center) error
	CreateTeacher(ctx context.Context, teacher *model.Teacher) error
	CreateStudent(ctx context.Context, student *model.Student) error
	CreateCourse(ctx context.Context, course *model.Course, teacherIDs []int64) error
	Enroll(ctx context.Context, studentID, courseID int64) (*model.Enrollment, error)
	ResolveCenterFor(ctx context.Context, userID int64) (*model.Center, model.Role, error)
	TeachersOf(ctx context.Context, courseID int64) ([]*model.Teacher, error)
	CoursesOf(ctx context.Context, teacherID int64) ([]*model.Course, error)
	GetTeacher(ctx context.Context, id int64) (*model.Teacher, error)
	ListTeachers(ctx context.Context, centerID int64) ([]*model.Teacher, error)
}

type UserRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Name           string `json:"name" validate:"required,max=200"`
	IsStaff        bool   `json:"is_staff"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

type CenterRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Address     string `json:"address" validate:"max=500"`
	Phone       string `json:"phone" validate:"max=50"`
	OwnerUserID *int64 `json:"owner_user_id" validate:"omitempty,gt=0"`
}

type TeacherRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	CenterID *int64 `json:"center_id" validate:"omitempty,gt=0"`
	Bio      string `json:"bio"`
}

type StudentRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	CenterID int64  `json:"center_id" validate:"required,gt=0"`
	Phone    string `json:"phone" validate:"max=50"`
}

type SubjectRequest struct {
	CenterID    int64   `json:"center_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	TeacherIDs  []int64 `json:"teacher_ids" validate:"dive,gt=0"`
}

type EnrollmentRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	CourseID  int64 `json:"course_id" validate:"required,gt=0"`
}

type CenterResponse struct {
	Center *model.Center `json:"center"`
	Role   model.Role    `json:"role"`
}

// create is the shared body of the POST handlers: decode, validate, build
// the entity, store it and answer 201.
func create[Req any, Out any](log *zap.Logger, op string, build func(*Req) *Out, save func(context.Context, *Out) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req Req
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		out := build(&req)
		if err := save(r.Context(), out); err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusCreated, out)
	}
}

func NewCreateUser(log *zap.Logger, dir Directory) http.HandlerFunc {
	return create(log, "handlers.directory.NewCreateUser",
		func(req *UserRequest) *model.User {
			return &model.User{Email: req.Email, Name: req.Name, IsStaff: req.IsStaff, TelegramChatID: req.TelegramChatID}
		},
		dir.CreateUser,
	)
}

func NewCreateCenter(log *zap.Logger, dir Directory) http.HandlerFunc {
	return create(log, "handlers.directory.NewCreateCenter",
		func(req *CenterRequest) *model.Center {
			return &model.Center{Name: req.Name, Address: req.Address, Phone: req.Phone, OwnerUserID: req.OwnerUserID}
		},
		dir.CreateCenter,
	)
}

func NewCreateTeacher(log *zap.Logger, dir Directory) http.HandlerFunc {
	return create(log, "handlers.directory.NewCreateTeacher",
		func(req *TeacherRequest) *model.Teacher {
			return &model.Teacher{UserID: req.UserID, CenterID: req.CenterID, Bio: req.Bio}
		},
		dir.CreateTeacher,
	)
}

func NewCreateStudent(log *zap.Logger, dir Directory) http.HandlerFunc {
	return create(log, "handlers.directory.NewCreateStudent",
		func(req *StudentRequest) *model.Student {
			return &model.Student{UserID: req.UserID, CenterID: req.CenterID, Phone: req.Phone}
		},
		dir.CreateStudent,
	)
}

func NewCreateSubject(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewCreateSubject"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req SubjectRequest
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		course := &model.Course{CenterID: req.CenterID, Title: req.Title, Description: req.Description}
		if err := dir.CreateCourse(r.Context(), course, req.TeacherIDs); err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusCreated, course)
	}
}

func NewEnroll(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewEnroll"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req EnrollmentRequest
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		enrollment, err := dir.Enroll(r.Context(), req.StudentID, req.CourseID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusCreated, enrollment)
	}
}

// NewUserCenter handles GET /users/{id}/center.
func NewUserCenter(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewUserCenter"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		userID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		center, role, err := dir.ResolveCenterFor(r.Context(), userID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, CenterResponse{Center: center, Role: role})
	}
}

// NewTeacherSubjects handles GET /teachers/{id}/subjects.
func NewTeacherSubjects(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewTeacherSubjects"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		teacherID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		courses, err := dir.CoursesOf(r.Context(), teacherID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		if courses == nil {
			courses = []*model.Course{}
		}

		response.JSON(w, r, http.StatusOK, courses)
	}
}

func NewGetTeacher(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewGetTeacher"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		teacher, err := dir.GetTeacher(r.Context(), id)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, teacher)
	}
}

// NewCenterTeachers handles GET /centers/{id}/teachers.
func NewCenterTeachers(log *zap.Logger, dir Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.directory.NewCenterTeachers"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		centerID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		teachers, err := dir.ListTeachers(r.Context(), centerID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		if teachers == nil {
			teachers = []*model.Teacher{}
		}

		response.JSON(w, r, http.StatusOK, teachers)
	}
}
