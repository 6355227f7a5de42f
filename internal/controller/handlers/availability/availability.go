package availability

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/Freeeeeet/center_scheduler/internal/model"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Checker interface {
	CheckAvailability(ctx context.Context, teacherID int64, day time.Time, slotID int64, duration time.Duration) (bool, error)
	DaySlots(ctx context.Context, teacherID int64, day time.Time, duration time.Duration) ([]model.SlotAvailability, error)
}

type Response struct {
	Available bool `json:"available"`
}

type SlotResponse struct {
	ID     int64            `json:"id"`
	Time   string           `json:"time"`
	Status model.SlotStatus `json:"status"`
}

// NewCheck handles GET /availability?teacher_id&day&time_slot_id&duration.
func NewCheck(log *zap.Logger, checker Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.NewCheck"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		teacherID, err := request.QueryID(r, "teacher_id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		slotID, err := request.QueryID(r, "time_slot_id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		day, err := request.QueryDay(r, "day")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		duration, err := request.QueryDuration(r, "duration")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		ok, err := checker.CheckAvailability(r.Context(), teacherID, day, slotID, duration)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusOK, Response{Available: ok})
	}
}

// NewDaySlots handles GET /availability/slots?teacher_id&day&duration.
func NewDaySlots(log *zap.Logger, checker Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.NewDaySlots"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		teacherID, err := request.QueryID(r, "teacher_id")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		day, err := request.QueryDay(r, "day")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}
		duration, err := request.QueryDuration(r, "duration")
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		slots, err := checker.DaySlots(r.Context(), teacherID, day, duration)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, SlotResponse{ID: s.Slot.ID, Time: s.Slot.Time.String(), Status: s.Status})
		}
		response.JSON(w, r, http.StatusOK, resp)
	}
}
