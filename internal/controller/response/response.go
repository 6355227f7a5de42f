package response

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/center_scheduler/internal/controller/request"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Detail is the body of every error response.
type Detail struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps err to a status code and writes it as Detail. Unexpected errors
// are logged and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, body := Classify(err)

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Info("Request rejected", zap.Int("status", status), zap.String("reason", err.Error()))
	}

	JSON(w, r, status, body)
}

// Classify returns the status and body that err is reported with.
func Classify(err error) (int, Detail) {
	var (
		notFound   *service.NotFoundError
		validation validator.ValidationErrors
		badInput   *request.Error
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, Detail{Detail: notFound.Error()}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, Detail{Detail: "not found"}
	case errors.Is(err, service.ErrSlotUnavailable):
		return http.StatusBadRequest, Detail{Detail: service.ErrSlotUnavailable.Error()}
	case errors.Is(err, service.ErrDuplicateEnrollment):
		return http.StatusBadRequest, Detail{Detail: service.ErrDuplicateEnrollment.Error()}
	case errors.Is(err, service.ErrCapacityExceeded):
		return http.StatusBadRequest, Detail{Detail: service.ErrCapacityExceeded.Error()}
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrInvalidReference):
		return http.StatusBadRequest, Detail{Detail: err.Error()}
	case errors.Is(err, service.ErrBusy):
		return http.StatusLocked, Detail{Detail: service.ErrBusy.Error()}
	case errors.As(err, &validation):
		fields := make(map[string]string, len(validation))
		for _, fe := range validation {
			fields[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, Detail{Detail: "validation failed", Fields: fields}
	case errors.As(err, &badInput):
		return http.StatusBadRequest, Detail{Detail: badInput.Error()}
	default:
		return http.StatusInternalServerError, Detail{Detail: "internal error"}
	}
}
