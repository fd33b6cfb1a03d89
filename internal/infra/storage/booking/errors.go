package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается, когда хотя бы один из запрошенных часов уже занят
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrVersionConflict возвращается, когда бронирование изменили параллельно
	ErrVersionConflict = errors.New("booking.repository: booking was modified concurrently")

	// ErrInvalidDraft возвращается при попытке сохранить некорректный черновик
	ErrInvalidDraft = errors.New("booking.repository: invalid draft booking")

	// ErrTransaction возвращается при ошибках работы с транзакцией
	ErrTransaction = errors.New("booking.repository: transaction error")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
