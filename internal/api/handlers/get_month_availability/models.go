package get_month_availability

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
)

// DaySummaryResponse статус одного дня календаря
type DaySummaryResponse struct {
	Date           string `json:"date"`
	Status         string `json:"status"`
	AvailableSlots int    `json:"availableSlots"`
	TotalSlots     int    `json:"totalSlots"`
}

// MonthAvailabilityResponse HTTP response model
type MonthAvailabilityResponse struct {
	Month string               `json:"month"` // "2026-03"
	Days  []DaySummaryResponse `json:"days"`
}

// ToUseCaseRequest парсит месяц в формате YYYY-MM
func ToUseCaseRequest(monthStr string) (*getAvailability.MonthRequest, error) {
	month, err := time.Parse(domain.MonthFormat, monthStr)
	if err != nil {
		return nil, err
	}
	return &getAvailability.MonthRequest{Year: month.Year(), Month: month.Month()}, nil
}

// FromDomain конвертирует календарь месяца в HTTP response
func FromDomain(req *getAvailability.MonthRequest, days []domain.DaySummary) *MonthAvailabilityResponse {
	out := make([]DaySummaryResponse, 0, len(days))
	for _, d := range days {
		out = append(out, DaySummaryResponse{
			Date:           d.Date.Format(domain.DateFormat),
			Status:         string(d.Status),
			AvailableSlots: d.AvailableSlots,
			TotalSlots:     d.TotalSlots,
		})
	}

	return &MonthAvailabilityResponse{
		Month: time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, time.UTC).Format(domain.MonthFormat),
		Days:  out,
	}
}
