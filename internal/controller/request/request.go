package request

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// В ошибках валидации используем имена полей из json тегов
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Error is a malformed request: bad JSON, a missing parameter or a value
// that does not parse.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Decode reads a JSON body into v and validates it.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return Errorf("failed to decode request: %v", err)
	}
	return validate.Struct(v)
}

func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func QueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// OptionalQueryID returns nil when the parameter is absent.
func OptionalQueryID(r *http.Request, name string) (*int64, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	id, err := QueryID(r, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// QueryDay parses YYYY-MM-DD and, for compatibility, DD/MM/YYYY.
func QueryDay(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, Errorf("%s is required", name)
	}
	day, err := ParseDay(raw)
	if err != nil {
		return time.Time{}, Errorf("invalid %s: %v", name, err)
	}
	return day, nil
}

func ParseDay(raw string) (time.Time, error) {
	if d, err := model.ParseDay(raw); err == nil {
		return d, nil
	}
	if d, err := time.Parse("02/01/2006", strings.TrimSpace(raw)); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or DD/MM/YYYY, got %q", raw)
}

func QueryDuration(r *http.Request, name string) (time.Duration, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, Errorf("%s is required", name)
	}
	d, err := model.ParseLength(raw)
	if err != nil {
		return 0, Errorf("invalid %s: %v", name, err)
	}
	return d, nil
}
