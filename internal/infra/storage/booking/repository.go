package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// Коды ошибок PostgreSQL
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgSerializationFail  = "40001"
)

var bookingColumns = []string{
	"id",
	"reference",
	"client_name",
	"client_phone",
	"client_email",
	"booking_date",
	"start_time",
	"end_time",
	"duration_hours",
	"people_count",
	"state",
	"base_price",
	"extra_fees",
	"total_price",
	"source",
	"notes",
	"rescheduled_from",
	"rescheduled_to",
	"version",
	"created_at",
	"updated_at",
}

// ActiveInterval занятый интервал даты
type ActiveInterval struct {
	BookingID int64
	Interval  domain.Interval
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockDate берёт транзакционную advisory-блокировку даты
// Имеет смысл только внутри транзакции: блокировка снимается при COMMIT/ROLLBACK
func (r *Repository) LockDate(ctx context.Context, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", dateLockKey(date))).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDate - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockDate - execute: %v", ErrExecQuery, err)
	}
	return nil
}

// GetActiveIntervals возвращает занятые интервалы даты
// В транзакции блокирует строки (FOR UPDATE)
func (r *Repository) GetActiveIntervals(ctx context.Context, date time.Time) ([]ActiveInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("booking_id", "start_time", "end_time").
		From("booking_slots").
		Where(squirrel.Eq{"booking_date": date, "active": true}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveIntervals - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]ActiveInterval, 0)
	for rows.Next() {
		var ai ActiveInterval
		if err := rows.Scan(&ai.BookingID, &ai.Interval.Start, &ai.Interval.End); err != nil {
			return nil, fmt.Errorf("%w: GetActiveIntervals - scan row: %v", ErrScanRow, err)
		}
		result = append(result, ai)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveIntervals - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// NextReference выделяет номер REF-YYYYMMDD-NNNN для даты
// Вызывать под блокировкой даты (LockDate), уникальность дополнительно гарантирует индекс
func (r *Repository) NextReference(ctx context.Context, date time.Time) (string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"booking_date": date}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: NextReference - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return "", fmt.Errorf("%w: NextReference - scan count: %v", ErrScanRow, err)
	}

	return FormatReference(date, count+1), nil
}

// FormatReference формирует человекочитаемый номер бронирования
func FormatReference(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", domain.ReferencePrefix, date.Format("20060102"), seq)
}

// Insert сохраняет бронирование и его интервалы
func (r *Repository) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"client_name",
			"client_phone",
			"client_email",
			"booking_date",
			"start_time",
			"end_time",
			"duration_hours",
			"people_count",
			"state",
			"base_price",
			"extra_fees",
			"total_price",
			"source",
			"notes",
			"rescheduled_from",
		).
		Values(
			booking.Reference,
			booking.Client.Name,
			booking.Client.Phone,
			booking.Client.Email,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.DurationHours,
			booking.PeopleCount,
			booking.State,
			booking.BasePrice,
			booking.ExtraFees,
			booking.TotalPrice,
			booking.Source,
			booking.Notes,
			booking.RescheduledFrom,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, classify(err, "Insert - execute insert")
	}

	if err := r.insertSlots(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *Repository) insertSlots(ctx context.Context, booking *domain.Booking) error {
	if len(booking.Intervals) == 0 {
		return fmt.Errorf("%w: booking has no intervals", ErrInvalidDraft)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booking_slots").
		Columns("booking_id", "booking_date", "start_time", "end_time")
	for _, in := range booking.Intervals {
		insertBuilder = insertBuilder.Values(booking.ID, booking.BookingDate, in.Start, in.End)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertSlots - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return classify(err, "insertSlots - execute insert")
	}
	return nil
}

// ReleaseSlots освобождает интервалы бронирования
func (r *Repository) ReleaseSlots(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_slots").
		Set("active", false).
		Where(squirrel.Eq{"booking_id": bookingID, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReleaseSlots - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReleaseSlots - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

// UpdateState меняет состояние с проверкой версии (оптимистичная блокировка)
func (r *Repository) UpdateState(ctx context.Context, booking *domain.Booking, state domain.BookingState) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("state", state).
		Set("rescheduled_to", booking.RescheduledTo).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID, "version": booking.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateState - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.Version, &booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("%w: UpdateState - execute update: %v", ErrExecQuery, err)
	}

	booking.State = state
	return nil
}

// AppendHistory добавляет запись в историю состояний (записи никогда не изменяются)
func (r *Repository) AppendHistory(ctx context.Context, tr *domain.StateTransition) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_state_history").
		Columns("booking_id", "from_state", "to_state", "actor", "notes", "changed_at").
		Values(tr.BookingID, tr.From, tr.To, tr.Actor, tr.Notes, tr.ChangedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&tr.ID); err != nil {
		return fmt.Errorf("%w: AppendHistory - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetHistory возвращает историю состояний в порядке записи
func (r *Repository) GetHistory(ctx context.Context, bookingID int64) ([]domain.StateTransition, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "from_state", "to_state", "actor", "notes", "changed_at").
		From("booking_state_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]domain.StateTransition, 0)
	for rows.Next() {
		var tr domain.StateTransition
		if err := rows.Scan(&tr.ID, &tr.BookingID, &tr.From, &tr.To, &tr.Actor, &tr.Notes, &tr.ChangedAt); err != nil {
			return nil, fmt.Errorf("%w: GetHistory - scan row: %v", ErrScanRow, err)
		}
		history = append(history, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

// GetByID получает бронирование по ID вместе с интервалами
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false, "GetByID")
}

// GetByIDForUpdate получает бронирование с блокировкой строки (только в транзакции)
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, dbmetrics.IsInTransaction(ctx), "GetByIDForUpdate")
}

// GetByReference получает бронирование по человекочитаемому номеру
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference}, false, "GetByReference")
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq, forUpdate bool, op string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)
	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}

	if err := r.attachIntervals(ctx, []*domain.Booking{booking}, false); err != nil {
		return nil, err
	}

	return booking, nil
}

// FindOverlapping возвращает бронирования даты, занимающие время, с их активными интервалами
func (r *Repository) FindOverlapping(ctx context.Context, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_date": date, "state": statesToStrings(domain.OccupyingStates)}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachIntervals(ctx, bookings, true); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindOccupiedInRange возвращает занимающие время бронирования в диапазоне дат (для календаря месяца)
func (r *Repository) FindOccupiedInRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.GtOrEq{"booking_date": from}).
		Where(squirrel.LtOrEq{"booking_date": to}).
		Where(squirrel.Eq{"state": statesToStrings(domain.OccupyingStates)}).
		OrderBy("booking_date ASC, start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOccupiedInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOccupiedInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachIntervals(ctx, bookings, true); err != nil {
		return nil, err
	}
	return bookings, nil
}

// List получает бронирования с фильтрацией для администратора
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}
	if filter.State != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"state": *filter.State})
	}
	if filter.Phone != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_phone": *filter.Phone})
	}

	selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_time DESC")
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachIntervals(ctx, bookings, false); err != nil {
		return nil, err
	}
	return bookings, nil
}

// attachIntervals загружает интервалы бронирований одним запросом
func (r *Repository) attachIntervals(ctx context.Context, bookings []*domain.Booking, activeOnly bool) error {
	if len(bookings) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	byID := make(map[int64]*domain.Booking, len(bookings))
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	selectBuilder := psqlbuilder.Select("booking_id", "start_time", "end_time").
		From("booking_slots").
		Where(squirrel.Expr("booking_id = ANY(?)", pq.Array(ids))).
		OrderBy("booking_id ASC", "start_time ASC")
	if activeOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachIntervals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachIntervals - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID int64
		var in domain.Interval
		if err := rows.Scan(&bookingID, &in.Start, &in.End); err != nil {
			return fmt.Errorf("%w: attachIntervals - scan row: %v", ErrScanRow, err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Intervals = append(b.Intervals, in)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachIntervals - rows error: %v", ErrScanRow, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var startTime, endTime types.TimeString

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.Client.Name,
		&booking.Client.Phone,
		&booking.Client.Email,
		&booking.BookingDate,
		&startTime,
		&endTime,
		&booking.DurationHours,
		&booking.PeopleCount,
		&booking.State,
		&booking.BasePrice,
		&booking.ExtraFees,
		&booking.TotalPrice,
		&booking.Source,
		&booking.Notes,
		&booking.RescheduledFrom,
		&booking.RescheduledTo,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.StartTime = startTime
	booking.EndTime = endTime
	booking.BookingDate = domain.DateOnly(booking.BookingDate)
	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// classify переводит нарушения ограничений PostgreSQL в доменные ошибки
func classify(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgExclusionViolation:
			return fmt.Errorf("%w: %s: %v", ErrSlotNotAvailable, op, err)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s - duplicate reference: %v", ErrExecQuery, op, err)
		case pgSerializationFail:
			return fmt.Errorf("%w: %s: %v", ErrVersionConflict, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
}

func statesToStrings(states []domain.BookingState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

func dateLockKey(date time.Time) string {
	return "booking-date:" + date.Format(domain.DateFormat)
}
