package catalog

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

type Catalog interface {
	CreateSlot(ctx context.Context, at model.TimeOfDay) (*model.TimeSlot, error)
	ListSlots(ctx context.Context) ([]*model.TimeSlot, error)
	CreateDuration(ctx context.Context, name string, length time.Duration) (*model.Duration, error)
	ListDurations(ctx context.Context) ([]*model.Duration, error)
}

type SlotRequest struct {
	Time *model.TimeOfDay `json:"time" validate:"required"`
}

type DurationRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Duration string `json:"duration" validate:"required"`
}

type DurationResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Duration        string    `json:"duration"`
	DurationSeconds int64     `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

func toDurationResponse(d *model.Duration) DurationResponse {
	return DurationResponse{
		ID:              d.ID,
		Name:            d.Name,
		Duration:        d.Length.String(),
		DurationSeconds: int64(d.Length / time.Second),
		CreatedAt:       d.CreatedAt,
	}
}

func NewCreateSlot(log *zap.Logger, catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.NewCreateSlot"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req SlotRequest
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		slot, err := catalog.CreateSlot(r.Context(), *req.Time)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusCreated, slot)
	}
}

func NewListSlots(log *zap.Logger, catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.NewListSlots"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		slots, err := catalog.ListSlots(r.Context())
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

func NewCreateDuration(log *zap.Logger, catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.NewCreateDuration"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		var req DurationRequest
		if err := request.Decode(r, &req); err != nil {
			response.Error(w, r, log, err)
			return
		}

		length, err := model.ParseLength(req.Duration)
		if err != nil {
			response.Error(w, r, log, request.Errorf("invalid duration: %v", err))
			return
		}

		d, err := catalog.CreateDuration(r.Context(), req.Name, length)
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		response.JSON(w, r, http.StatusCreated, toDurationResponse(d))
	}
}

func NewListDurations(log *zap.Logger, catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.NewListDurations"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)

		durations, err := catalog.ListDurations(r.Context())
		if err != nil {
			response.Error(w, r, log, err)
			return
		}

		resp := make([]DurationResponse, 0, len(durations))
		for _, d := range durations {
			resp = append(resp, toDurationResponse(d))
		}
		response.JSON(w, r, http.StatusOK, resp)
	}
}
