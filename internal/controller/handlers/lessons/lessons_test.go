package lessons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	Registry
	got   service.CreateLessonInput
	gotID int64
	err   error
}

func (f *fakeRegistry) CreateLesson(_ context.Context, in service.CreateLessonInput) (*model.Lesson, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Lesson{ID: 3, CenterID: in.CenterID, TeacherIDs: in.TeacherIDs}, nil
}

func (f *fakeRegistry) UpdateLesson(_ context.Context, id int64, in service.CreateLessonInput) (*model.Lesson, error) {
	f.gotID, f.got = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Lesson{ID: id, CenterID: in.CenterID, MaxStudents: in.MaxStudents}, nil
}

func (f *fakeRegistry) ListLessons(context.Context, model.LessonFilter) ([]*model.Lesson, error) {
	return nil, nil
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/lessons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	reg := &fakeRegistry{}
	h := NewCreate(zap.NewNop(), reg)

	rec := post(h, `{"center_id":1,"teacher_ids":[2],"subject_ids":[3],"slot_ids":[4,5],
		"start_date":"2026-03-02","end_date":"16/03/2026","max_students":8,"weekday":1}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":3`)

	require.NotNil(t, reg.got.StartDate)
	require.NotNil(t, reg.got.EndDate)
	assert.Equal(t, time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC), *reg.got.EndDate)
	assert.Equal(t, time.Monday, *reg.got.Weekday)
	assert.Equal(t, []int64{4, 5}, reg.got.SlotIDs)
	assert.Nil(t, reg.got.DurationDays)
}

func TestCreate_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"empty teachers", `{"center_id":1,"teacher_ids":[],"subject_ids":[3],"slot_ids":[4],"duration_days":5}`, nil, http.StatusBadRequest},
		{"weekday out of range", `{"center_id":1,"teacher_ids":[2],"subject_ids":[3],"slot_ids":[4],"duration_days":5,"weekday":7}`, nil, http.StatusBadRequest},
		{"bad end date", `{"center_id":1,"teacher_ids":[2],"subject_ids":[3],"slot_ids":[4],"end_date":"soon"}`, nil, http.StatusBadRequest},
		{"foreign teacher", `{"center_id":1,"teacher_ids":[2],"subject_ids":[3],"slot_ids":[4],"duration_days":5}`, service.ErrInvalidReference, http.StatusBadRequest},
		{"missing slot", `{"center_id":1,"teacher_ids":[2],"subject_ids":[3],"slot_ids":[4],"duration_days":5}`, &service.NotFoundError{Entity: "time slot"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(NewCreate(zap.NewNop(), &fakeRegistry{err: tt.err}), tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	NewList(zap.NewNop(), &fakeRegistry{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons?center_id=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewList(zap.NewNop(), &fakeRegistry{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lessons?center_id=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate(t *testing.T) {
	put := func(reg *fakeRegistry, path, body string) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Put("/lessons/{id}", NewUpdate(zap.NewNop(), reg))

		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	body := `{"center_id":1,"teacher_ids":[2,6],"subject_ids":[3],"slot_ids":[4],"duration_days":14,"max_students":5}`

	reg := &fakeRegistry{}
	rec := put(reg, "/lessons/9", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":9`)
	assert.EqualValues(t, 9, reg.gotID)
	assert.Equal(t, []int64{2, 6}, reg.got.TeacherIDs)
	require.NotNil(t, reg.got.DurationDays)
	assert.Equal(t, 14, *reg.got.DurationDays)

	rec = put(&fakeRegistry{err: &service.NotFoundError{Entity: "lesson"}}, "/lessons/9", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = put(&fakeRegistry{}, "/lessons/nine", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = put(&fakeRegistry{}, "/lessons/9", `{"center_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
