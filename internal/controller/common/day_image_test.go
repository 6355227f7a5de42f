package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDaySchedulePNG(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	schedules := []model.TeacherSchedule{
		{
			TeacherID: 1,
			Teacher:   "Ms. Smith",
			Slots: []model.ScheduledSlot{{
				Time:      "09:00 AM",
				Start:     model.TimeOfDay(9 * 3600),
				End:       model.TimeOfDay(9*3600 + 1800),
				Attendees: []model.Attendee{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}},
			}},
		},
		{TeacherID: 2, Teacher: "Mr. Jones", Slots: []model.ScheduledSlot{}},
	}

	data, err := RenderDaySchedule(day, schedules)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, minImageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestRenderDayScheduleEmpty(t *testing.T) {
	data, err := RenderDaySchedule(time.Now(), nil)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestCalculateHourRange(t *testing.T) {
	hours := calculateHourRange([]model.TeacherSchedule{{
		Slots: []model.ScheduledSlot{
			{Start: model.TimeOfDay(9 * 3600), End: model.TimeOfDay(10*3600 + 60)},
			{Start: model.TimeOfDay(13 * 3600), End: model.TimeOfDay(14 * 3600)},
		},
	}})

	assert.Equal(t, 8, hours.start)
	assert.Equal(t, 15, hours.end)
	assert.Equal(t, 7, hours.total)

	def := calculateHourRange(nil)
	assert.Equal(t, defaultMinHour-hourPaddingTop, def.start)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
