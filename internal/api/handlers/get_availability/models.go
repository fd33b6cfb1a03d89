package get_availability

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// SlotResponse один час рабочего дня
type SlotResponse struct {
	StartTime        string `json:"startTime"` // "10:00"
	EndTime          string `json:"endTime"`   // "11:00"
	Available        bool   `json:"available"`
	OccupancyPercent int    `json:"occupancyPercent"`
}

// DayAvailabilityResponse HTTP response model
type DayAvailabilityResponse struct {
	Date           string         `json:"date"`   // "2026-03-15"
	Status         string         `json:"status"` // AVAILABLE, PARTIALLY_BOOKED, FULLY_BOOKED, UNKNOWN
	AvailableSlots int            `json:"availableSlots"`
	Slots          []SlotResponse `json:"slots"`
}

// FromDomain конвертирует доступность дня в HTTP response
func FromDomain(day domain.DayAvailability) *DayAvailabilityResponse {
	slots := make([]SlotResponse, 0, len(day.Slots))
	for _, s := range day.Slots {
		slots = append(slots, SlotResponse{
			StartTime:        s.StartTime.String(),
			EndTime:          s.EndTime.String(),
			Available:        s.Available,
			OccupancyPercent: s.OccupancyPercent,
		})
	}

	return &DayAvailabilityResponse{
		Date:           day.Date.Format(domain.DateFormat),
		Status:         string(day.Status),
		AvailableSlots: day.AvailableCount(),
		Slots:          slots,
	}
}
