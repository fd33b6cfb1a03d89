package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Request модель запроса на перенос
type Request struct {
	BookingID int64        // ID переносимого бронирования
	Date      time.Time    // Новая дата (без времени)
	Hours     []string     // Новые часы ("10:00")
	Notes     *string      // Комментарий к переносу (попадает в историю)
	Actor     domain.Actor // Сотрудник, выполняющий перенос
}

// Response результат переноса
type Response struct {
	Old *domain.Booking // Исходное бронирование в состоянии RESCHEDULED
	New *domain.Booking // Новое бронирование в состоянии PENDING
}

// Settings параметры переноса из конфигурации
type Settings struct {
	Pricing        domain.PricingPolicy
	ReserveTimeout time.Duration
}
