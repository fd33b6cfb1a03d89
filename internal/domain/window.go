package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

var (
	// ErrDateInPast возвращается для дат раньше сегодняшней (в часовом поясе студии)
	ErrDateInPast = errors.New("domain: date is in the past")

	// ErrHourInPast возвращается для уже начавшихся часов сегодняшнего дня
	ErrHourInPast = errors.New("domain: hour has already started")

	// ErrStudioClosed возвращается для выходных и закрытых дат
	ErrStudioClosed = errors.New("domain: studio is closed on this date")

	// ErrOutsideWorkingHours возвращается для часов вне [opening, closing)
	ErrOutsideWorkingHours = errors.New("domain: hour is outside working hours")
)

// CheckBookable reports whether every hour of date can be requested at moment now
func (c ScheduleConfig) CheckBookable(date time.Time, hours []types.TimeString, now time.Time) error {
	date = DateOnly(date)
	today := c.Today(now)

	if date.Before(today) {
		return fmt.Errorf("%w: %s", ErrDateInPast, date.Format(DateFormat))
	}
	if c.IsBlackout(date) {
		return fmt.Errorf("%w: %s", ErrStudioClosed, date.Format(DateFormat))
	}

	loc := c.Location()
	for _, h := range hours {
		if !c.Contains(h) {
			return fmt.Errorf("%w: %s not in %02d:00-%02d:00", ErrOutsideWorkingHours, h, c.OpeningHour, c.ClosingHour)
		}
		if date.Equal(today) && !h.On(date, loc).After(now) {
			return fmt.Errorf("%w: %s", ErrHourInPast, h)
		}
	}

	return nil
}
