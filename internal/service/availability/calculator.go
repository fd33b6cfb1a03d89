// Package availability derives per-hour slot occupancy and day status
// from a schedule and the bookings overlapping a date.
package availability

import (
	"math"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Calculator pure availability calculator, safe for concurrent use
type Calculator struct{}

// NewCalculator создает калькулятор доступности
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeDayAvailability builds one slot per working hour of date and derives the day status.
// Bookings outside the occupying states and bookings of other dates are ignored.
func (c *Calculator) ComputeDayAvailability(date time.Time, schedule domain.ScheduleConfig, bookings []*domain.Booking) domain.DayAvailability {
	date = domain.DateOnly(date)
	dateKey := date.Format(domain.DateFormat)

	intervals := make([]domain.Interval, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.OccupiesTime() || b.DateKey() != dateKey {
			continue
		}
		intervals = append(intervals, bookingIntervals(b)...)
	}

	slots := make([]domain.Slot, 0, schedule.SlotCount())
	for h := schedule.OpeningHour; h < schedule.ClosingHour; h++ {
		slotStart := h * domain.SlotMinutes
		slotEnd := slotStart + domain.SlotMinutes

		overlap := 0
		for _, in := range intervals {
			overlap += in.OverlapMinutes(slotStart, slotEnd)
		}

		percent := occupancyPercent(overlap)
		slots = append(slots, domain.Slot{
			Date:             date,
			StartTime:        mustTime(slotStart),
			EndTime:          mustTime(slotEnd),
			Available:        percent < 100,
			OccupancyPercent: percent,
		})
	}

	return domain.DayAvailability{
		Date:   date,
		Slots:  slots,
		Status: domain.DeriveStatus(slots),
	}
}

// ClosedDay returns the working-hour slots of date, all unavailable
func (c *Calculator) ClosedDay(date time.Time, schedule domain.ScheduleConfig) domain.DayAvailability {
	date = domain.DateOnly(date)

	slots := make([]domain.Slot, 0, schedule.SlotCount())
	for h := schedule.OpeningHour; h < schedule.ClosingHour; h++ {
		slotStart := h * domain.SlotMinutes
		slots = append(slots, domain.Slot{
			Date:      date,
			StartTime: mustTime(slotStart),
			EndTime:   mustTime(slotStart + domain.SlotMinutes),
			Available: false,
		})
	}

	return domain.DayAvailability{
		Date:   date,
		Slots:  slots,
		Status: domain.DayFullyBooked,
	}
}

// bookingIntervals falls back to [StartTime, EndTime) for bookings loaded without slot rows
func bookingIntervals(b *domain.Booking) []domain.Interval {
	if len(b.Intervals) > 0 {
		return b.Intervals
	}
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return nil
	}
	return []domain.Interval{{Start: b.StartTime, End: b.EndTime}}
}

func occupancyPercent(overlapMinutes int) int {
	percent := int(math.Round(float64(overlapMinutes) / float64(domain.SlotMinutes) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// mustTime slot bounds are always within 00:00..24:00
func mustTime(minutes int) types.TimeString {
	ts, _ := types.FromMinutes(minutes)
	return ts
}
