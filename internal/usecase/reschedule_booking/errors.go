package reschedule_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInvalidDate возвращается при дате или часе в прошлом
	ErrInvalidDate = errors.New("reschedule_booking: invalid booking date")

	// ErrStudioClosed возвращается, когда студия закрыта в новую дату
	ErrStudioClosed = errors.New("reschedule_booking: studio is closed on this date")

	// ErrOutsideWorkingHours возвращается, когда час вне рабочего времени
	ErrOutsideWorkingHours = errors.New("reschedule_booking: hour is outside working hours")

	// ErrBookingNotFound возвращается, когда переносимое бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrTransitionNotAllowed возвращается, когда бронирование нельзя перенести из текущего состояния
	ErrTransitionNotAllowed = errors.New("reschedule_booking: transition not allowed")

	// ErrSlotNotAvailable возвращается, когда хотя бы один из новых часов занят
	ErrSlotNotAvailable = errors.New("reschedule_booking: slot is not available")

	// ErrConcurrentUpdate возвращается, когда бронирование изменили параллельно
	ErrConcurrentUpdate = errors.New("reschedule_booking: booking was modified concurrently")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
