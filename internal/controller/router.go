package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/appointments"
	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/availability"
	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/catalog"
	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/directory"
	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/lessons"
	"github.com/Freeeeeet/center_scheduler/internal/controller/handlers/schedules"
	mwLogger "github.com/Freeeeeet/center_scheduler/internal/controller/middleware"
	"github.com/Freeeeeet/center_scheduler/internal/controller/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Booking is what the appointment and availability endpoints need.
type Booking interface {
	appointments.Booker
	availability.Checker
}

type Deps struct {
	Booking   Booking
	Lessons   lessons.Registry
	Catalog   catalog.Catalog
	Directory directory.Directory
	Queries   schedules.Querier

	// Ping checks the database for /healthz. May be nil.
	Ping func(ctx context.Context) error

	AllowedOrigins []string
}

// NewRouter собирает HTTP роутер со всеми эндпоинтами
func NewRouter(log *zap.Logger, deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.Logger(log))
	router.Use(middleware.Recoverer)
	router.Use(corsSettings(deps.AllowedOrigins).Handler)

	router.Get("/healthz", healthz(log, deps.Ping))

	// Appointments
	router.Post("/appointments", appointments.NewCreate(log, deps.Booking))
	router.Get("/appointments/{id}", appointments.NewGet(log, deps.Booking))
	router.Delete("/appointments/{id}", appointments.NewCancel(log, deps.Booking))

	// Availability
	router.Get("/availability", availability.NewCheck(log, deps.Booking))
	router.Get("/availability/slots", availability.NewDaySlots(log, deps.Booking))

	// Lessons
	router.Post("/lessons", lessons.NewCreate(log, deps.Lessons))
	router.Get("/lessons", lessons.NewList(log, deps.Lessons))
	router.Get("/lessons/{id}", lessons.NewGet(log, deps.Lessons))
	router.Put("/lessons/{id}", lessons.NewUpdate(log, deps.Lessons))
	router.Delete("/lessons/{id}", lessons.NewDelete(log, deps.Lessons))
	router.Get("/lessons/{id}/days-left", lessons.NewDaysLeft(log, deps.Lessons))

	// Catalogs
	router.Post("/slots", catalog.NewCreateSlot(log, deps.Catalog))
	router.Get("/slots", catalog.NewListSlots(log, deps.Catalog))
	router.Post("/durations", catalog.NewCreateDuration(log, deps.Catalog))
	router.Get("/durations", catalog.NewListDurations(log, deps.Catalog))

	// Directory
	router.Post("/users", directory.NewCreateUser(log, deps.Directory))
	router.Get("/users/{id}/center", directory.NewUserCenter(log, deps.Directory))
	router.Post("/centers", directory.NewCreateCenter(log, deps.Directory))
	router.Get("/centers/{id}/teachers", directory.NewCenterTeachers(log, deps.Directory))
	router.Post("/teachers", directory.NewCreateTeacher(log, deps.Directory))
	router.Get("/teachers/{id}", directory.NewGetTeacher(log, deps.Directory))
	router.Get("/teachers/{id}/subjects", directory.NewTeacherSubjects(log, deps.Directory))
	router.Get("/teachers/{id}/subjects/{subjectID}/lessons", lessons.NewTimes(log, deps.Lessons))
	router.Post("/students", directory.NewCreateStudent(log, deps.Directory))
	router.Post("/subjects", directory.NewCreateSubject(log, deps.Directory))
	router.Post("/enrollments", directory.NewEnroll(log, deps.Directory))

	// Subjects and schedules
	router.Get("/subjects/{id}/teachers", schedules.NewSubjectTeachers(log, deps.Queries))
	router.Get("/subjects/{id}/available-days", schedules.NewAvailableDays(log, deps.Queries))
	router.Get("/subjects/{id}/lessons", lessons.NewForSubject(log, deps.Lessons))
	router.Get("/schedules", schedules.NewSchedule(log, deps.Queries))
	router.Get("/schedules/image", schedules.NewImage(log, deps.Queries))

	return router
}

func corsSettings(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
}

func healthz(log *zap.Logger, ping func(ctx context.Context) error) http.HandlerFunc {
	type status struct {
		Status string `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				response.JSON(w, r, http.StatusServiceUnavailable, status{Status: "unavailable"})
				return
			}
		}
		response.JSON(w, r, http.StatusOK, status{Status: "ok"})
	}
}
