package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

var (
	// ErrNoHours возвращается при пустом наборе часов
	ErrNoHours = errors.New("domain: no hours requested")

	// ErrInvalidHour возвращается, если час не в формате "HH:00"
	ErrInvalidHour = errors.New("domain: hour must be formatted as HH:00")

	// ErrDuplicateHour возвращается при повторе часа в запросе
	ErrDuplicateHour = errors.New("domain: duplicate hour")
)

// ParseHours parses "HH:00" strings, rejects duplicates and returns them sorted
func ParseHours(raw []string) ([]types.TimeString, error) {
	if len(raw) == 0 {
		return nil, ErrNoHours
	}

	seen := make(map[int]struct{}, len(raw))
	hours := make([]types.TimeString, 0, len(raw))
	for _, s := range raw {
		ts, err := types.NewTimeStringFromString(s)
		if err != nil || !ts.IsHourAligned() || ts == "24:00" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHour, s)
		}
		if _, ok := seen[ts.Minutes()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHour, ts)
		}
		seen[ts.Minutes()] = struct{}{}
		hours = append(hours, ts)
	}

	sort.Slice(hours, func(i, j int) bool { return hours[i].IsBefore(hours[j]) })
	return hours, nil
}

// MergeHours collapses sorted hour starts into contiguous intervals
func MergeHours(hours []types.TimeString) []Interval {
	intervals := make([]Interval, 0)
	for _, h := range hours {
		end, err := h.AddMinutes(SlotMinutes)
		if err != nil {
			continue
		}
		if n := len(intervals); n > 0 && intervals[n-1].End == h {
			intervals[n-1].End = end
			continue
		}
		intervals = append(intervals, Interval{Start: h, End: end})
	}
	return intervals
}

// ApplyIntervals sets the interval-derived fields of a booking
func (b *Booking) ApplyIntervals(intervals []Interval) {
	b.Intervals = intervals
	if len(intervals) == 0 {
		b.StartTime, b.EndTime, b.DurationHours = "", "", 0
		return
	}

	total := 0
	for _, in := range intervals {
		total += in.Minutes()
	}
	b.StartTime = intervals[0].Start
	b.EndTime = intervals[len(intervals)-1].End
	b.DurationHours = float64(total) / 60
}
