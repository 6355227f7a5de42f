package lessons

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Registry interface {
	CreateLesson(ctx context.Context, in service.CreateLessonInput) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, id int64, in service.CreateLessonInput) (*model.Lesson, error)
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	ListLessons(ctx context.Context, filter model.LessonFilter) ([]*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
	DaysUntilEnd(ctx context.Context, lessonID int64) (int, error)
	LessonsForSubject(ctx context.Context, userID, subjectID int64) ([]*model.Lesson, error)
	LessonTimes(ctx context.Context, userID, teacherID, subjectID int64) ([]*model.TimeSlot, error)
}

type Request struct {
	CenterID     int64   `json:"center_id" validate:"required,gt=0"`
	TeacherIDs   []int64 `json:"teacher_ids" validate:"required,min=1,dive,gt=0"`
	SubjectIDs   []int64 `json:"subject_ids" validate:"required,min=1,dive,gt=0"`
	SlotIDs      []int64 `json:"slot_ids" validate:"required,min=1,dive,gt=0"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	DurationDays *int    `json:"duration_days" validate:"omitempty,gte=0"`
	MaxStudents  int     `json:"max_students" validate:"gte=0"`
	Weekday      *int    `json:"weekday" validate:"omitempty,gte=0,lte=6"`
	DurationID   *int64  `json:"duration_id" validate:"omitempty,gt=0"`
}

type DaysLeftResponse struct {
	LessonID int64 `json:"lesson_id"`
	DaysLeft int   `json:"days_left"`
}

func (req Request) toInput() (service.CreateLessonInput, error) {
	in := service.CreateLessonInput{
		CenterID:     req.CenterID,
		TeacherIDs:   req.TeacherIDs,
		SubjectIDs:   req.SubjectIDs,
		SlotIDs:      req.SlotIDs,
		DurationDays: req.DurationDays,
		MaxStudents:  req.MaxStudents,
		DurationID:   req.DurationID,
	}

	if req.StartDate != "" {
		d, err := request.ParseDay(req.StartDate)
		if err != nil {
			return in, request.Errorf("invalid start_date: %v", err)
		}
		in.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := request.ParseDay(req.EndDate)
		if err != nil {
			return in, request.Errorf("invalid end_date: %v", err)
		}
		in.EndDate = &d
	}
	if req.Weekday != nil {
		wd := time.Weekday(*req.Weekday)
		in.Weekday = &wd
	}

	return in, nil
}

func NewCreate(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewCreate"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		in, err := req.toInput()
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		lesson, err := registry.CreateLesson(r.Context(), in)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		log.Info("Lesson created", zap.Int64("lesson_id", lesson.ID))

		response.JSON(w, r, http.StatusCreated, lesson)
	}
}

// NewList handles GET /lessons with optional center_id, subject_id and
// teacher_id filters.
func NewList(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewList"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var (
			filter model.LessonFilter
			err    error
		)
		if filter.CenterID, err = request.OptionalQueryID(r, "center_id"); err != nil {
			response.Error(w, r, log, err)
			return
		}
		if filter.SubjectID, err = request.OptionalQueryID(r, "subject_id"); err != nil {
			response.Error(w, r, log, err)
			return
		}
		if filter.TeacherID, err = request.OptionalQueryID(r, "teacher_id"); err != nil {
			response.Error(w, r, log, err)
			return
		}

		lessons, err := registry.ListLessons(r.Context(), filter)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, nonNil(lessons))
	}
}

func NewGet(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewGet"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		lesson, err := registry.GetLesson(r.Context(), id)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, lesson)
	}
}

// NewUpdate handles PUT /lessons/{id}. The body replaces the whole lesson.
func NewUpdate(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewUpdate"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		in, err := req.toInput()
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		lesson, err := registry.UpdateLesson(r.Context(), id, in)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		log.Info("Lesson updated", zap.Int64("lesson_id", lesson.ID))

		response.JSON(w, r, http.StatusOK, lesson)
	}
}

func NewDelete(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewDelete"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		if err := registry.DeleteLesson(r.Context(), id); err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.NoContent(w)
	}
}

func NewDaysLeft(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewDaysLeft"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		days, err := registry.DaysUntilEnd(r.Context(), id)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, DaysLeftResponse{LessonID: id, DaysLeft: days})
	}
}

// NewForSubject handles GET /subjects/{id}/lessons?user_id.
func NewForSubject(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewForSubject"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		subjectID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		userID, err := request.QueryID(r, "user_id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		lessons, err := registry.LessonsForSubject(r.Context(), userID, subjectID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, nonNil(lessons))
	}
}

// NewTimes handles GET /teachers/{id}/subjects/{subjectID}/lessons?user_id.
func NewTimes(log *zap.Logger, registry Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.lessons.NewTimes"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		teacherID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		subjectID, err := request.PathID(r, "subjectID")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		userID, err := request.QueryID(r, "user_id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		slots, err := registry.LessonTimes(r.Context(), userID, teacherID, subjectID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		if slots == nil {
			slots = []*model.TimeSlot{}
		}

		response.JSON(w, r, http.StatusOK, slots)
	}
}

func nonNil(lessons []*model.Lesson) []*model.Lesson {
	if lessons == nil {
		return []*model.Lesson{}
	}
	return lessons
}
