package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// ErrInvalidSchedule возвращается при нарушении инвариантов расписания
var ErrInvalidSchedule = errors.New("domain: invalid schedule config")

// ScheduleConfig описание рабочего календаря студии (синглтон)
type ScheduleConfig struct {
	UTCOffsetMinutes int // смещение часового пояса студии, минуты к востоку от UTC
	OpeningHour      int // начало первого слота
	ClosingHour      int // конец последнего слота (слоты начинаются в OpeningHour..ClosingHour-1)

	ClosedWeekdays []time.Weekday // выходные дни недели
	BlackoutDates  []time.Time    // отдельные закрытые даты

	UpdatedAt time.Time
}

// DefaultSchedule возвращает расписание по умолчанию
func DefaultSchedule() ScheduleConfig {
	return ScheduleConfig{
		UTCOffsetMinutes: DefaultUTCOffsetMinutes,
		OpeningHour:      DefaultOpeningHour,
		ClosingHour:      DefaultClosingHour,
	}
}

// Validate проверяет инварианты расписания
func (c ScheduleConfig) Validate() error {
	if c.OpeningHour < 0 || c.ClosingHour > 24 || c.OpeningHour >= c.ClosingHour {
		return fmt.Errorf("%w: opening hour %d must be before closing hour %d within 0..24",
			ErrInvalidSchedule, c.OpeningHour, c.ClosingHour)
	}
	if c.UTCOffsetMinutes < MinUTCOffsetMinute || c.UTCOffsetMinutes > MaxUTCOffsetMinute {
		return fmt.Errorf("%w: utc offset %d minutes out of range", ErrInvalidSchedule, c.UTCOffsetMinutes)
	}
	for _, wd := range c.ClosedWeekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: unknown weekday %d", ErrInvalidSchedule, wd)
		}
	}
	return nil
}

// Location returns the fixed-offset zone of the studio
func (c ScheduleConfig) Location() *time.Location {
	return FixedZone(c.UTCOffsetMinutes)
}

// FixedZone builds a zone named like "UTC+03:00"
func FixedZone(offsetMinutes int) *time.Location {
	sign := '+'
	abs := offsetMinutes
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, abs/60, abs%60)
	return time.FixedZone(name, offsetMinutes*60)
}

// Today returns the current calendar date in the studio zone (midnight UTC)
func (c ScheduleConfig) Today(now time.Time) time.Time {
	return DateOnly(now.In(c.Location()))
}

// IsBlackout returns true if the studio is closed on the date
func (c ScheduleConfig) IsBlackout(date time.Time) bool {
	wd := date.Weekday()
	for _, closed := range c.ClosedWeekdays {
		if closed == wd {
			return true
		}
	}
	key := date.Format(DateFormat)
	for _, d := range c.BlackoutDates {
		if d.Format(DateFormat) == key {
			return true
		}
	}
	return false
}

// SlotCount returns the number of hour slots in the working window
func (c ScheduleConfig) SlotCount() int {
	return c.ClosingHour - c.OpeningHour
}

// Contains reports whether the hour slot starting at t lies within [opening, closing)
func (c ScheduleConfig) Contains(t types.TimeString) bool {
	if !t.IsHourAligned() {
		return false
	}
	h := t.Hour()
	return h >= c.OpeningHour && h < c.ClosingHour
}

// DateOnly strips the clock from t keeping its calendar date, normalized to UTC midnight
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a UTC-midnight date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}
