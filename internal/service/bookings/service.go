package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioBooking/internal/service/bookings/models"
)

// Service сервис для чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID вместе с историей состояний
// Доступно только администраторам
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", err)
	}

	history, err := s.bookingRepo.GetHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to load history for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - history error: %v", ErrInternal, err)
	}
	booking.StateHistory = history

	return models.FromDomainBooking(booking), nil
}

// GetByReference получает бронирование по номеру для клиента (без истории)
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error) {
	s.logger.Info("GetByReference: fetching booking %s", reference)

	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, s.mapRepoError("GetByReference", err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования с фильтрацией по периоду, состоянию и телефону
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		s.logger.Warn("List: end date %s before start date %s",
			req.EndDate.Format(domain.DateFormat), req.StartDate.Format(domain.DateFormat))
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

func (s *Service) mapRepoError(op string, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking not found", op)
		return ErrBookingNotFound
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
