package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	layoutShort   = "15:04"
	layoutLong    = "15:04:05"
)

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOutOfRange возвращается, когда время выходит за пределы суток
	ErrTimeOutOfRange = errors.New("time is out of day range")
)

// TimeString время дня в формате "HH:MM"
// Допускается значение "24:00" - конец суток (используется только как правая граница интервала)
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(layoutShort))
}

// NewTimeStringFromString парсит строку "HH:MM" или "HH:MM:SS"
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(strings.TrimSpace(s))
	if len(ts) == len(layoutLong) {
		ts = ts[:len(layoutShort)]
	}
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// FromMinutes создает TimeString из количества минут от начала суток
func FromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > minutesPerDay {
		return "", fmt.Errorf("%w: %d minutes", ErrTimeOutOfRange, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// FromHour создает TimeString для начала часа
func FromHour(hour int) (TimeString, error) {
	return FromMinutes(hour * 60)
}

// Validate проверяет формат времени
func (t TimeString) Validate() error {
	s := string(t)
	if s == "24:00" {
		return nil
	}
	if len(s) != len(layoutShort) {
		return ErrInvalidTimeString
	}
	if _, err := time.Parse(layoutShort, s); err != nil {
		return ErrInvalidTimeString
	}
	return nil
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() int {
	if t == "24:00" {
		return minutesPerDay
	}
	parsed, err := time.Parse(layoutShort, string(t))
	if err != nil {
		return 0
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// Hour возвращает час
func (t TimeString) Hour() int {
	return t.Minutes() / 60
}

// IsHourAligned возвращает true, если время приходится на начало часа
func (t TimeString) IsHourAligned() bool {
	return t.Minutes()%60 == 0
}

// AddMinutes прибавляет минуты. Результат не может выйти за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	return FromMinutes(t.Minutes() + minutes)
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// On возвращает момент времени в указанную дату и зоне
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(t.Minutes()) * time.Minute)
}

func (t TimeString) String() string {
	return string(t)
}

// Value реализует driver.Valuer для записи в колонку TIME
func (t TimeString) Value() (driver.Value, error) {
	if t == "24:00" {
		return "24:00:00", nil
	}
	return string(t) + ":00", nil
}

// Scan реализует sql.Scanner для чтения из колонки TIME
func (t *TimeString) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case nil:
		*t = ""
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}

	if strings.HasPrefix(raw, "24:00") {
		*t = "24:00"
		return nil
	}

	parsed, err := NewTimeStringFromString(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
