package appointments

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Booker interface {
	CreateAppointment(ctx context.Context, in service.CreateAppointmentInput) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
}

type Request struct {
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	TeacherID  *int64 `json:"teacher_id" validate:"omitempty,gt=0"`
	CenterID   int64  `json:"center_id" validate:"required,gt=0"`
	SubjectID  *int64 `json:"subject_id" validate:"omitempty,gt=0"`
	LessonID   *int64 `json:"lesson_id" validate:"omitempty,gt=0"`
	TimeSlotID int64  `json:"time_slot_id" validate:"required,gt=0"`
	Day        string `json:"day" validate:"required"`
	// Go duration ("30m") or "HH:MM:SS". May be empty when the lesson has
	// a default duration.
	Duration string `json:"duration"`
}

type Response struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	TeacherID  *int64    `json:"teacher_id"`
	CenterID   int64     `json:"center_id"`
	SubjectID  *int64    `json:"subject_id"`
	LessonID   *int64    `json:"lesson_id"`
	TimeSlotID int64     `json:"time_slot_id"`
	Day        string    `json:"day"`
	Time       string    `json:"time"`
	Duration   string    `json:"duration"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(a *model.Appointment) Response {
	return Response{
		ID:         a.ID,
		UserID:     a.UserID,
		TeacherID:  a.TeacherID,
		CenterID:   a.CenterID,
		SubjectID:  a.SubjectID,
		LessonID:   a.LessonID,
		TimeSlotID: a.TimeSlotID,
		Day:        a.Day.Format(time.DateOnly),
		Time:       a.SlotTime.String(),
		Duration:   formatClock(a.Duration),
		CreatedAt:  a.CreatedAt,
	}
}

// formatClock renders d as HH:MM:SS.
func formatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func NewCreate(log *zap.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.NewCreate"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		day, err := request.ParseDay(req.Day)
		if err != nil {
			response.Error(w, r, log, request.Errorf("invalid day: %v", err))
			return
		}

		var duration time.Duration
		if req.Duration != "" {
			duration, err = model.ParseLength(req.Duration)
			if err != nil {
				response.Error(w, r, log, request.Errorf("invalid duration: %v", err))
				return
			}
		}

		appt, err := booker.CreateAppointment(r.Context(), service.CreateAppointmentInput{
			UserID:     req.UserID,
			TeacherID:  req.TeacherID,
			CenterID:   req.CenterID,
			SubjectID:  req.SubjectID,
			LessonID:   req.LessonID,
			TimeSlotID: req.TimeSlotID,
			Day:        day,
			Duration:   duration,
		})
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		log.Info("Appointment created", zap.Int64("appointment_id", appt.ID))

		response.JSON(w, r, http.StatusCreated, toResponse(appt))
	}
}

func NewGet(log *zap.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.NewGet"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		appt, err := booker.GetAppointment(r.Context(), id)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, toResponse(appt))
	}
}

func NewCancel(log *zap.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.NewCancel"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		id, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		if err := booker.CancelAppointment(r.Context(), id); err != nil {
			response.Error(w, r, log, err)
			return
		}

		log.Info("Appointment canceled", zap.Int64("appointment_id", id))

		response.NoContent(w)
	}
}
