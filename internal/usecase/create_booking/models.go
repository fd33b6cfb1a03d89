package create_booking

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Name        string               // Имя клиента
	Phone       string               // Телефон в свободном формате, приводится к E.164
	Email       *string              // Email (опционально)
	Date        time.Time            // Дата бронирования (без времени)
	Hours       []string             // Начала часов ("10:00"), не обязательно подряд
	PeopleCount int                  // Количество человек
	Source      domain.BookingSource // Канал (website, phone, walk-in, admin)
	Notes       *string              // Дополнительные заметки (опционально)
	Actor       domain.Actor         // Кто создаёт бронирование
}

// Settings параметры бронирования из конфигурации
type Settings struct {
	Pricing        domain.PricingPolicy
	ReserveTimeout time.Duration
	PhoneRegion    string // регион по умолчанию для номеров без кода страны
}
