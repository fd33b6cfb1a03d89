package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Request модели

// UpdateScheduleRequest запрос на обновление расписания
// Все поля опциональны - обновляются только переданные значения
type UpdateScheduleRequest struct {
	UTCOffsetMinutes *int      `json:"utcOffsetMinutes,omitempty"`
	OpeningHour      *int      `json:"openingHour,omitempty"`
	ClosingHour      *int      `json:"closingHour,omitempty"`
	ClosedWeekdays   *[]string `json:"closedWeekdays,omitempty"` // ["sunday", "monday"]
	BlackoutDates    *[]string `json:"blackoutDates,omitempty"`  // ["2026-01-01"]
}

// ApplyTo накладывает переданные поля на текущее расписание
func (r *UpdateScheduleRequest) ApplyTo(current domain.ScheduleConfig) (domain.ScheduleConfig, error) {
	out := current

	if r.UTCOffsetMinutes != nil {
		out.UTCOffsetMinutes = *r.UTCOffsetMinutes
	}
	if r.OpeningHour != nil {
		out.OpeningHour = *r.OpeningHour
	}
	if r.ClosingHour != nil {
		out.ClosingHour = *r.ClosingHour
	}

	if r.ClosedWeekdays != nil {
		weekdays := make([]time.Weekday, 0, len(*r.ClosedWeekdays))
		for _, name := range *r.ClosedWeekdays {
			wd, err := ParseWeekday(name)
			if err != nil {
				return domain.ScheduleConfig{}, err
			}
			weekdays = append(weekdays, wd)
		}
		sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })
		out.ClosedWeekdays = weekdays
	}

	if r.BlackoutDates != nil {
		dates := make([]time.Time, 0, len(*r.BlackoutDates))
		for _, raw := range *r.BlackoutDates {
			d, err := domain.ParseDate(raw)
			if err != nil {
				return domain.ScheduleConfig{}, fmt.Errorf("invalid blackout date %q, expected YYYY-MM-DD", raw)
			}
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		out.BlackoutDates = dates
	}

	return out, nil
}

// ParseWeekday разбирает название дня недели без учёта регистра
func ParseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(strings.TrimSpace(name), wd.String()) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// Response модели

// ScheduleResponse ответ с расписанием студии
type ScheduleResponse struct {
	Timezone         string     `json:"timezone"` // "UTC+03:00"
	UTCOffsetMinutes int        `json:"utcOffsetMinutes"`
	OpeningHour      int        `json:"openingHour"`
	ClosingHour      int        `json:"closingHour"`
	SlotMinutes      int        `json:"slotMinutes"`
	ClosedWeekdays   []string   `json:"closedWeekdays"`
	BlackoutDates    []string   `json:"blackoutDates"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"` // nil, пока используются значения по умолчанию
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(c domain.ScheduleConfig) *ScheduleResponse {
	resp := &ScheduleResponse{
		Timezone:         c.Location().String(),
		UTCOffsetMinutes: c.UTCOffsetMinutes,
		OpeningHour:      c.OpeningHour,
		ClosingHour:      c.ClosingHour,
		SlotMinutes:      domain.SlotMinutes,
		ClosedWeekdays:   make([]string, 0, len(c.ClosedWeekdays)),
		BlackoutDates:    make([]string, 0, len(c.BlackoutDates)),
	}

	for _, wd := range c.ClosedWeekdays {
		resp.ClosedWeekdays = append(resp.ClosedWeekdays, strings.ToLower(wd.String()))
	}
	for _, d := range c.BlackoutDates {
		resp.BlackoutDates = append(resp.BlackoutDates, d.Format(domain.DateFormat))
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		resp.UpdatedAt = &updated
	}

	return resp
}
