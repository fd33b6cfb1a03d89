package domain

// Default schedule values (used when the studio_schedule row is missing)
const (
	DefaultUTCOffsetMinutes = 180 // UTC+3
	DefaultOpeningHour      = 9
	DefaultClosingHour      = 21
	SlotMinutes             = 60
)

// Business validation constants
const (
	MinPeopleCount     = 1
	MaxPeopleCount     = 30
	MaxClientNameLen   = 200
	MaxNotesLength     = 500
	MaxHoursPerRequest = 24
	MinUTCOffsetMinute = -12 * 60
	MaxUTCOffsetMinute = 14 * 60
)

// Time format constants
const (
	TimeFormat  = "15:04"      // HH:MM
	DateFormat  = "2006-01-02" // YYYY-MM-DD
	MonthFormat = "2006-01"    // YYYY-MM
)

// ReferencePrefix префикс человекочитаемого номера бронирования
const ReferencePrefix = "REF"

// OccupyingStates список состояний, занимающих время в расписании
// Используется при подсчёте занятости слотов
var OccupyingStates = []BookingState{
	StatePending,
	StateConfirmed,
	StateInProgress,
	StateCompleted,
}

// ReleasingStates список состояний, освобождающих время
var ReleasingStates = []BookingState{
	StateCancelled,
	StateNoShow,
	StateRescheduled,
}
