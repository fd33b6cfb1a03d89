package lifecycle

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("lifecycle: booking not found")

	// ErrInvalidState возвращается при неизвестном целевом состоянии
	ErrInvalidState = errors.New("lifecycle: invalid target state")

	// ErrTransitionNotAllowed возвращается при недопустимом переходе (ошибка вызывающей стороны)
	ErrTransitionNotAllowed = errors.New("lifecycle: transition not allowed")

	// ErrConcurrentUpdate возвращается, когда бронирование изменили параллельно
	ErrConcurrentUpdate = errors.New("lifecycle: booking was modified concurrently")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("lifecycle: internal error")
)
