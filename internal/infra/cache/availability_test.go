package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

var testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestAvailabilityCache_DayRoundTripAndInvalidate(t *testing.T) {
	c := NewAvailabilityCache(time.Minute)

	day := domain.DayAvailability{Date: testDate, Status: domain.DayAvailable}
	assert.True(t, c.SetDay(day, c.DayGeneration(testDate)))
	assert.True(t, c.SetMonth(2026, time.March,
		[]domain.DaySummary{{Date: testDate, Status: domain.DayAvailable}}, c.MonthGeneration(2026, time.March)))

	got, ok := c.GetDay(testDate)
	assert.True(t, ok)
	assert.Equal(t, domain.DayAvailable, got.Status)

	c.InvalidateDate(testDate)

	_, ok = c.GetDay(testDate)
	assert.False(t, ok)
	_, ok = c.GetMonth(2026, time.March)
	assert.False(t, ok)
}

func TestAvailabilityCache_FillAfterInvalidationIsDropped(t *testing.T) {
	c := NewAvailabilityCache(time.Minute)

	dayGen := c.DayGeneration(testDate)
	monthGen := c.MonthGeneration(2026, time.March)

	// между снимком и записью бронирование зафиксировано
	c.InvalidateDate(testDate)

	assert.False(t, c.SetDay(domain.DayAvailability{Date: testDate, Status: domain.DayAvailable}, dayGen))
	assert.False(t, c.SetMonth(2026, time.March,
		[]domain.DaySummary{{Date: testDate, Status: domain.DayAvailable}}, monthGen))

	_, ok := c.GetDay(testDate)
	assert.False(t, ok)
	_, ok = c.GetMonth(2026, time.March)
	assert.False(t, ok)

	// другой день не затронут
	other := testDate.AddDate(0, 0, 1)
	assert.True(t, c.SetDay(domain.DayAvailability{Date: other, Status: domain.DayAvailable}, c.DayGeneration(other)))
}

func TestAvailabilityCache_FillAfterFlushIsDropped(t *testing.T) {
	c := NewAvailabilityCache(time.Minute)

	gen := c.DayGeneration(testDate)
	c.Flush()

	assert.False(t, c.SetDay(domain.DayAvailability{Date: testDate, Status: domain.DayAvailable}, gen))
	assert.True(t, c.SetDay(domain.DayAvailability{Date: testDate, Status: domain.DayAvailable}, c.DayGeneration(testDate)))
}

func TestAvailabilityCache_UnknownIsNotCached(t *testing.T) {
	c := NewAvailabilityCache(time.Minute)

	c.SetDay(domain.UnknownDay(testDate), c.DayGeneration(testDate))
	_, ok := c.GetDay(testDate)
	assert.False(t, ok)

	c.SetMonth(2026, time.March, []domain.DaySummary{{Date: testDate, Status: domain.DayUnknown}},
		c.MonthGeneration(2026, time.March))
	_, ok = c.GetMonth(2026, time.March)
	assert.False(t, ok)
}

func TestAvailabilityCache_Disabled(t *testing.T) {
	c := NewAvailabilityCache(0)

	c.SetDay(domain.DayAvailability{Date: testDate, Status: domain.DayAvailable}, c.DayGeneration(testDate))
	_, ok := c.GetDay(testDate)
	assert.False(t, ok)

	c.InvalidateDate(testDate)
	c.Flush()
}

func TestAvailabilityCache_Flush(t *testing.T) {
	c := NewAvailabilityCache(time.Minute)
	c.SetDay(domain.DayAvailability{Date: testDate, Status: domain.DayFullyBooked}, c.DayGeneration(testDate))

	c.Flush()

	_, ok := c.GetDay(testDate)
	assert.False(t, ok)
}
