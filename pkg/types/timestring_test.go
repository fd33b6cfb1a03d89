package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "short", input: "10:00", want: "10:00"},
		{name: "with seconds", input: "09:30:00", want: "09:30"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "garbage", input: "10h", wantErr: true},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Arithmetic(t *testing.T) {
	start := TimeString("10:30")

	end, err := start.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:00"), end)
	assert.True(t, start.IsBefore(end))
	assert.True(t, end.IsAfter(start))
	assert.True(t, end.IsHourAligned())
	assert.False(t, start.IsHourAligned())

	last, err := TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), last)
	assert.Equal(t, 24*60, last.Minutes())

	_, err = last.AddMinutes(1)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("13:00:00")))
	assert.Equal(t, TimeString("13:00"), ts)

	require.NoError(t, ts.Scan("24:00:00"))
	assert.Equal(t, TimeString("24:00"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("08:15"), ts)

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	got := TimeString("14:00").On(date, loc)

	assert.True(t, got.Equal(time.Date(2026, 10, 20, 14, 0, 0, 0, loc)))
	assert.Equal(t, 11, got.UTC().Hour())
}
