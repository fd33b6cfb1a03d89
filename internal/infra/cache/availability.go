// Package cache keeps computed availability views for a short TTL.
package cache

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const cleanupMultiplier = 2

// AvailabilityCache кеш доступности по ключам даты и месяца
// UNKNOWN-дни никогда не кешируются.
// Каждый ключ имеет поколение: инвалидация увеличивает его, и запись,
// вычисленная по снимку более старого поколения, отбрасывается.
type AvailabilityCache struct {
	store *gocache.Cache

	mu          sync.Mutex
	generations map[string]uint64
	epoch       uint64 // увеличивается при Flush
}

// NewAvailabilityCache создает кеш с указанным TTL; ttl == 0 отключает кеширование
func NewAvailabilityCache(ttl time.Duration) *AvailabilityCache {
	c := &AvailabilityCache{generations: make(map[string]uint64)}
	if ttl > 0 {
		c.store = gocache.New(ttl, ttl*cleanupMultiplier)
	}
	return c
}

// DayGeneration возвращает поколение дня; читается до похода в хранилище
func (c *AvailabilityCache) DayGeneration(date time.Time) uint64 {
	return c.generation(dayKey(date))
}

// MonthGeneration возвращает поколение месяца
func (c *AvailabilityCache) MonthGeneration(year int, month time.Month) uint64 {
	return c.generation(monthKey(year, month))
}

// GetDay возвращает закешированный день
func (c *AvailabilityCache) GetDay(date time.Time) (domain.DayAvailability, bool) {
	if c.store == nil {
		return domain.DayAvailability{}, false
	}
	v, ok := c.store.Get(dayKey(date))
	if !ok {
		return domain.DayAvailability{}, false
	}
	day, ok := v.(domain.DayAvailability)
	return day, ok
}

// SetDay кеширует день, если с момента чтения gen дата не инвалидировалась
func (c *AvailabilityCache) SetDay(day domain.DayAvailability, gen uint64) bool {
	if c.store == nil || day.Status == domain.DayUnknown {
		return false
	}
	return c.setIfCurrent(dayKey(day.Date), gen, day)
}

// GetMonth возвращает закешированный календарь месяца
func (c *AvailabilityCache) GetMonth(year int, month time.Month) ([]domain.DaySummary, bool) {
	if c.store == nil {
		return nil, false
	}
	v, ok := c.store.Get(monthKey(year, month))
	if !ok {
		return nil, false
	}
	days, ok := v.([]domain.DaySummary)
	return days, ok
}

// SetMonth кеширует календарь месяца, если в нём нет UNKNOWN-дней и поколение не изменилось
func (c *AvailabilityCache) SetMonth(year int, month time.Month, days []domain.DaySummary, gen uint64) bool {
	if c.store == nil {
		return false
	}
	for _, d := range days {
		if d.Status == domain.DayUnknown {
			return false
		}
	}
	return c.setIfCurrent(monthKey(year, month), gen, days)
}

// InvalidateDate удаляет день и его месяц и увеличивает их поколения
func (c *AvailabilityCache) InvalidateDate(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	day, month := dayKey(date), monthKey(date.Year(), date.Month())
	c.generations[day]++
	c.generations[month]++

	if c.store != nil {
		c.store.Delete(day)
		c.store.Delete(month)
	}
}

// Flush очищает весь кеш (после изменения расписания)
func (c *AvailabilityCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	if c.store != nil {
		c.store.Flush()
	}
}

func (c *AvailabilityCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch + c.generations[key]
}

// setIfCurrent сравнивает поколение и пишет под одной блокировкой с InvalidateDate
func (c *AvailabilityCache) setIfCurrent(key string, gen uint64, value interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch+c.generations[key] != gen {
		return false
	}
	c.store.SetDefault(key, value)
	return true
}

func dayKey(date time.Time) string {
	return "day:" + date.Format(domain.DateFormat)
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("month:%04d-%02d", year, int(month))
}
