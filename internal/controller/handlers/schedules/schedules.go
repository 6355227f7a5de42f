package schedules

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Querier interface {
	AvailableDays(ctx context.Context, subjectID int64) ([]time.Weekday, error)
	TeachersFor(ctx context.Context, subjectID int64) ([]*model.Teacher, error)
	ScheduleFor(ctx context.Context, userID int64, date time.Time) ([]model.TeacherSchedule, error)
	ScheduleImage(ctx context.Context, userID int64, date time.Time) ([]byte, error)
}

type DayResponse struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
}

// NewSchedule handles GET /schedules?user_id&date.
func NewSchedule(log *zap.Logger, q Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.NewSchedule"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		userID, date, err := userAndDate(r)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		schedules, err := q.ScheduleFor(r.Context(), userID, date)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		if schedules == nil {
			schedules = []model.TeacherSchedule{}
		}

		response.JSON(w, r, http.StatusOK, schedules)
	}
}

// NewImage handles GET /schedules/image?user_id&date and answers a PNG.
func NewImage(log *zap.Logger, q Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.NewImage"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		userID, date, err := userAndDate(r)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		img, err := q.ScheduleImage(r.Context(), userID, date)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(img); err != nil {
			log.Warn("Failed to write image", zap.Error(err))
		}
	}
}

// NewAvailableDays handles GET /subjects/{id}/available-days.
func NewAvailableDays(log *zap.Logger, q Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.NewAvailableDays"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		subjectID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		days, err := q.AvailableDays(r.Context(), subjectID)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		resp := make([]DayResponse, 0, len(days))
		for _, d := range days {
			resp = append(resp, DayResponse{Weekday: int(d), Name: d.String()})
		}
		response.JSON(w, r, http.StatusOK, resp)
	}
}

// NewSubjectTeachers handles GET /subjects/{id}/teachers.
func NewSubjectTeachers(log *zap.Logger, q Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.NewSubjectTeachers"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		subjectID, err := request.PathID(r, "id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		teachers, err := q.TeachersFor(r.Context(), subjectID)
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

func userAndDate(r *http.Request) (int64, time.Time, error) {
	userID, err := request.QueryID(r, "user_id")
	if err != nil {
		return 0, time.Time{}, err
	}
	date, err := request.QueryDay(r, "date")
	if err != nil {
		return 0, time.Time{}, err
	}
	return userID, date, nil
}
