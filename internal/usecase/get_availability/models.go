package get_availability

import "time"

// DayRequest модель запроса доступности на дату
type DayRequest struct {
	Date time.Time // Дата (без времени)
}

// MonthRequest модель запроса календаря месяца
type MonthRequest struct {
	Year  int
	Month time.Month
}
