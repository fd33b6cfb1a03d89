package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-StudioBooking/internal/service/schedule/models"
)

// Service сервис для работы с расписанием студии
type Service struct {
	repo     ScheduleRepository
	defaults domain.ScheduleConfig
	cache    AvailabilityCache
	logger   Logger
}

// NewService создает новый экземпляр сервиса расписания
// defaults используются, пока в БД нет сохранённой строки
func NewService(
	repo ScheduleRepository,
	defaults domain.ScheduleConfig,
	cache AvailabilityCache,
	logger Logger,
) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		cache:    cache,
		logger:   logger,
	}
}

// Current возвращает действующее расписание
func (s *Service) Current(ctx context.Context) (domain.ScheduleConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return s.defaults, nil
		}
		return domain.ScheduleConfig{}, fmt.Errorf("%w: Current - repository error: %v", ErrInternal, err)
	}
	return *cfg, nil
}

// Get получает расписание для отображения
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context) (*models.ScheduleResponse, error) {
	cfg, err := s.Current(ctx)
	if err != nil {
		s.logger.Error("Get: failed to load schedule: %v", err)
		return nil, err
	}
	return models.FromDomainSchedule(cfg), nil
}

// Update частично обновляет расписание и сбрасывает весь кеш доступности
func (s *Service) Update(ctx context.Context, actor domain.Actor, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: updating schedule by %s", actor)

	current, err := s.Current(ctx)
	if err != nil {
		s.logger.Error("Update: failed to load schedule: %v", err)
		return nil, err
	}

	updated, err := req.ApplyTo(current)
	if err != nil {
		s.logger.Warn("Update: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := updated.Validate(); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.repo.Upsert(ctx, &updated)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	// новые часы или выходные меняют доступность любой даты
	s.cache.Flush()

	s.logger.Info("Update: schedule saved, hours %02d-%02d, offset %d min",
		saved.OpeningHour, saved.ClosingHour, saved.UTCOffsetMinutes)
	return models.FromDomainSchedule(*saved), nil
}
