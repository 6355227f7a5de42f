package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: " 14:30 ", want: "14:30"},
		{in: "07:05:09", want: "07:05:09"},
		{in: "23:59:59", want: "23:59:59"},
		{in: "24:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.True(t, got.Valid())
		})
	}
}

func TestTimeOfDay_Formats(t *testing.T) {
	tod, err := NewTimeOfDay(15, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, 15, tod.Hour())
	assert.Equal(t, 5, tod.Minute())
	assert.Equal(t, "03:05 PM", tod.Clock12())
	assert.Equal(t, 15*time.Hour+5*time.Minute, tod.Offset())

	day := time.Date(2026, time.March, 2, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 2, 15, 5, 0, 0, time.UTC), tod.On(day))

	_, err = NewTimeOfDay(12, 60, 0)
	assert.Error(t, err)
}

func TestTimeOfDay_JSON(t *testing.T) {
	var v struct {
		At TimeOfDay `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"08:30"}`), &v))
	assert.Equal(t, TimeOfDay(8*3600+30*60), v.At)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"08:30"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"at":830}`), &v))
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30m", want: 30 * time.Minute},
		{in: "1h15m", want: 75 * time.Minute},
		{in: "00:45:00", want: 45 * time.Minute},
		{in: "25:00:00", want: 25 * time.Hour},
		{in: "00:61:00", wantErr: true},
		{in: "half an hour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("02/03/2026")
	assert.Error(t, err)
}
