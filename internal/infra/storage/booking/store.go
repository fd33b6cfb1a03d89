package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// TransitionCommand команда смены состояния
type TransitionCommand struct {
	BookingID int64
	Target    domain.BookingState
	Actor     domain.Actor
	Notes     *string
	At        time.Time
	Location  *time.Location // часовой пояс студии для правила NO_SHOW
}

// RescheduleCommand команда переноса: старое бронирование закрывается, создаётся новое
type RescheduleCommand struct {
	BookingID int64
	Draft     *domain.Booking
	Actor     domain.Actor
	Notes     *string
	At        time.Time
	Location  *time.Location
}

// Store единственный писатель зафиксированных бронирований
// Каждая операция выполняется одной транзакцией под advisory-блокировкой даты
type Store struct {
	repo      *Repository
	events    EventAppender
	txManager TransactionManager
}

// NewStore создает хранилище бронирований
func NewStore(repo *Repository, events EventAppender, txManager TransactionManager) *Store {
	return &Store{
		repo:      repo,
		events:    events,
		txManager: txManager,
	}
}

// Reserve атомарно проверяет, что все часы черновика свободны, и сохраняет его в PENDING
// При занятом хотя бы одном часе возвращает ErrSlotNotAvailable, ничего не сохраняя
func (s *Store) Reserve(ctx context.Context, draft *domain.Booking, actor domain.Actor, at time.Time) (*domain.Booking, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var result *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockDate(txCtx, draft.BookingDate); err != nil {
			return err
		}

		created, err := s.reserveLocked(txCtx, draft, nil, actor, at)
		if err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// reserveLocked вызывается под блокировкой даты черновика
// Черновик вызывающего не меняется: сохраняется и возвращается его копия
func (s *Store) reserveLocked(ctx context.Context, draft *domain.Booking, rescheduledFrom *int64, actor domain.Actor, at time.Time) (*domain.Booking, error) {
	taken, err := s.repo.GetActiveIntervals(ctx, draft.BookingDate)
	if err != nil {
		return nil, err
	}
	if conflict, ok := findConflict(draft.Intervals, taken); ok {
		return nil, fmt.Errorf("%w: %s-%s on %s is taken by booking id=%d",
			ErrSlotNotAvailable, conflict.Interval.Start, conflict.Interval.End, draft.DateKey(), conflict.BookingID)
	}

	reference, err := s.repo.NextReference(ctx, draft.BookingDate)
	if err != nil {
		return nil, err
	}

	booking := copyDraft(draft)
	booking.Reference = reference
	booking.RescheduledFrom = rescheduledFrom

	initial, err := domain.Initialize(booking, actor, at)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	created, err := s.repo.Insert(ctx, booking)
	if err != nil {
		return nil, err
	}

	initial.BookingID = created.ID
	if err := s.repo.AppendHistory(ctx, &initial); err != nil {
		return nil, err
	}
	created.StateHistory = []domain.StateTransition{initial}

	event, err := domain.NewBookingCreatedEvent(created)
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build event: %v", ErrTransaction, err)
	}
	if err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: Reserve - append event: %v", ErrTransaction, err)
	}

	return created, nil
}

// Transition проверяет переход по таблице состояний и сохраняет его вместе с записью истории и событием
func (s *Store) Transition(ctx context.Context, cmd TransitionCommand) (*domain.Booking, error) {
	var result *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetByIDForUpdate(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}

		if err := domain.ValidateTransition(booking, cmd.Target, cmd.At, cmd.Location, false); err != nil {
			return err
		}

		if err := s.applyTransition(txCtx, booking, cmd.Target, cmd.Actor, cmd.Notes, cmd.At); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Reschedule закрывает подтверждённое бронирование (RESCHEDULED) и создаёт связанное новое
// Обе даты блокируются в порядке возрастания, при конфликте откатывается всё
func (s *Store) Reschedule(ctx context.Context, cmd RescheduleCommand) (*domain.Booking, *domain.Booking, error) {
	if err := validateDraft(cmd.Draft); err != nil {
		return nil, nil, err
	}

	var oldBooking, newBooking *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}

		for _, date := range lockOrder(current.BookingDate, cmd.Draft.BookingDate) {
			if err := s.repo.LockDate(txCtx, date); err != nil {
				return err
			}
		}

		old, err := s.repo.GetByIDForUpdate(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(old, domain.StateRescheduled, cmd.At, cmd.Location, true); err != nil {
			return err
		}

		// освобождаем старые часы до проверки новых: перенос внутри тех же часов допустим
		if err := s.repo.ReleaseSlots(txCtx, old.ID); err != nil {
			return err
		}

		oldID := old.ID
		created, err := s.reserveLocked(txCtx, cmd.Draft, &oldID, cmd.Actor, cmd.At)
		if err != nil {
			return err
		}

		old.RescheduledTo = &created.ID
		if err := s.applyTransition(txCtx, old, domain.StateRescheduled, cmd.Actor, cmd.Notes, cmd.At); err != nil {
			return err
		}

		oldBooking, newBooking = old, created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return oldBooking, newBooking, nil
}

func copyDraft(draft *domain.Booking) *domain.Booking {
	b := *draft
	b.Intervals = append([]domain.Interval(nil), draft.Intervals...)
	b.StateHistory = nil
	return &b
}

// applyTransition сохраняет уже проверенный переход
func (s *Store) applyTransition(ctx context.Context, booking *domain.Booking, target domain.BookingState, actor domain.Actor, notes *string, at time.Time) error {
	from := booking.State

	if err := s.repo.UpdateState(ctx, booking, target); err != nil {
		return err
	}

	if target.ReleasesTime() {
		if err := s.repo.ReleaseSlots(ctx, booking.ID); err != nil {
			return err
		}
	}

	tr := domain.StateTransition{
		BookingID: booking.ID,
		From:      from,
		To:        target,
		Actor:     actor,
		Notes:     notes,
		ChangedAt: at,
	}
	if err := s.repo.AppendHistory(ctx, &tr); err != nil {
		return err
	}
	booking.StateHistory = append(booking.StateHistory, tr)

	event, err := domain.NewStateChangedEvent(booking, tr)
	if err != nil {
		return fmt.Errorf("%w: Transition - build event: %v", ErrTransaction, err)
	}
	if err := s.events.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: Transition - append event: %v", ErrTransaction, err)
	}

	return nil
}

// GetByID путь чтения для подготовки переноса
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// FindOverlapping путь чтения для калькулятора доступности
func (s *Store) FindOverlapping(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	return s.repo.FindOverlapping(ctx, date)
}

// FindOccupiedInRange путь чтения для календаря месяца
func (s *Store) FindOccupiedInRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	return s.repo.FindOccupiedInRange(ctx, from, to)
}

func validateDraft(draft *domain.Booking) error {
	if draft == nil {
		return fmt.Errorf("%w: nil draft", ErrInvalidDraft)
	}
	if len(draft.Intervals) == 0 {
		return fmt.Errorf("%w: no intervals", ErrInvalidDraft)
	}
	if draft.State != "" && draft.State != domain.StateDraft {
		return fmt.Errorf("%w: state %s", ErrInvalidDraft, draft.State)
	}
	return nil
}

func findConflict(requested []domain.Interval, taken []ActiveInterval) (ActiveInterval, bool) {
	for _, in := range requested {
		for _, t := range taken {
			if in.Overlaps(t.Interval) {
				return t, true
			}
		}
	}
	return ActiveInterval{}, false
}

// lockOrder возвращает уникальные даты по возрастанию
func lockOrder(dates ...time.Time) []time.Time {
	unique := make([]time.Time, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		key := d.Format(domain.DateFormat)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Before(unique[j]) })
	return unique
}
