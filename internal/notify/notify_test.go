package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func sampleEvent(typ model.AppointmentEventType) model.AppointmentEvent {
	appt := model.Appointment{
		ID:         42,
		UserID:     7,
		TeacherID:  ptr(int64(3)),
		CenterID:   1,
		SubjectID:  ptr(int64(5)),
		TimeSlotID: 9,
		Day:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Duration:   30 * time.Minute,
		SlotTime:   model.TimeOfDay(9 * 3600),
		UserName:   "Alice",
	}
	return model.NewAppointmentEvent(typ, appt, time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC))
}

func TestAppointmentMessageJSON(t *testing.T) {
	event := sampleEvent(model.EventAppointmentBooked)

	body, err := json.Marshal(newAppointmentMessage(event))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, event.ID.String(), got["event_id"])
	assert.Equal(t, "appointment.booked", got["type"])
	assert.EqualValues(t, 42, got["appointment_id"])
	assert.EqualValues(t, 3, got["teacher_id"])
	assert.Nil(t, got["lesson_id"])
	assert.Equal(t, "2024-07-01", got["day"])
	assert.Equal(t, "09:00", got["time"])
	assert.EqualValues(t, 1800, got["duration_seconds"])
	assert.Equal(t, "2024-06-30T12:00:00Z", got["occurred_at"])
}

type fakeSender struct {
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, p)
	return &models.Message{}, nil
}

func TestTelegramNotifierSendsToTeacher(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, zap.NewNop())

	event := sampleEvent(model.EventAppointmentBooked)
	event.TeacherChatID = ptr(int64(555))
	event.StudentName = "Alice"

	require.NoError(t, n.Notify(context.Background(), event))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(555), sender.sent[0].ChatID)
	assert.True(t, strings.Contains(sender.sent[0].Text, "Alice"))
	assert.True(t, strings.Contains(sender.sent[0].Text, "Понедельник, 01.07.2024 09:00"))
	assert.True(t, strings.HasPrefix(sender.sent[0].Text, "✅ Новая запись"))
}

func TestTelegramNotifierSkipsWithoutChat(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), sampleEvent(model.EventAppointmentCanceled)))
	assert.Empty(t, sender.sent)
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, model.AppointmentEvent) error {
	r.calls++
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingNotifier{err: boom}
	second := &recordingNotifier{}

	err := Multi{first, second}.Notify(context.Background(), sampleEvent(model.EventAppointmentBooked))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		30 * time.Minute:  "30 мин",
		time.Hour:         "1 ч",
		90 * time.Minute:  "1 ч 30 мин",
		150 * time.Minute: "2 ч 30 мин",
	}
	for d, want := range tests {
		assert.Equal(t, want, formatDuration(d), d.String())
	}
}
