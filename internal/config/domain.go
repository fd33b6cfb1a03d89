package config

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// ToDomain конвертирует расписание по умолчанию в доменную модель
func (s ScheduleConfig) ToDomain() (domain.ScheduleConfig, error) {
	out := domain.ScheduleConfig{
		UTCOffsetMinutes: s.UTCOffsetMinutes,
		OpeningHour:      s.OpeningHour,
		ClosingHour:      s.ClosingHour,
		ClosedWeekdays:   make([]time.Weekday, 0, len(s.ClosedWeekdays)),
		BlackoutDates:    make([]time.Time, 0, len(s.BlackoutDates)),
	}

	for _, wd := range s.ClosedWeekdays {
		out.ClosedWeekdays = append(out.ClosedWeekdays, time.Weekday(wd))
	}
	for _, raw := range s.BlackoutDates {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return domain.ScheduleConfig{}, fmt.Errorf("schedule.blackout_dates: invalid date %q: %w", raw, err)
		}
		out.BlackoutDates = append(out.BlackoutDates, d)
	}

	if err := out.Validate(); err != nil {
		return domain.ScheduleConfig{}, err
	}
	return out, nil
}

// ToDomain конвертирует настройки цены в доменную политику
func (p PricingConfig) ToDomain() domain.PricingPolicy {
	return domain.PricingPolicy{
		HourlyRate:           p.HourlyRate,
		FreeHeadcount:        p.FreeHeadcount,
		ExtraPersonHourlyFee: p.ExtraPersonHourlyFee,
	}
}
