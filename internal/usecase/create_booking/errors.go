package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidPhone возвращается, если телефон нельзя привести к E.164
	ErrInvalidPhone = errors.New("create_booking: invalid phone number")

	// ErrInvalidPeopleCount возвращается при количестве человек вне допустимого диапазона
	ErrInvalidPeopleCount = errors.New("create_booking: invalid people count")

	// ErrInvalidDate возвращается при дате или часе в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrStudioClosed возвращается, когда студия закрыта в указанную дату
	ErrStudioClosed = errors.New("create_booking: studio is closed on this date")

	// ErrOutsideWorkingHours возвращается, когда час вне рабочего времени
	ErrOutsideWorkingHours = errors.New("create_booking: hour is outside working hours")

	// ErrSlotNotAvailable возвращается, когда хотя бы один из часов уже занят
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
