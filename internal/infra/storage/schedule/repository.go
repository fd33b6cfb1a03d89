package schedule

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
)

const singletonID = 1

// Repository репозиторий расписания студии (одна строка)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает сохранённое расписание или ErrScheduleNotFound
func (r *Repository) Get(ctx context.Context) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"utc_offset_minutes",
		"opening_hour",
		"closing_hour",
		"closed_weekdays",
		"blackout_dates",
		"updated_at",
	).
		From("studio_schedule").
		Where(squirrel.Eq{"id": singletonID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var cfg domain.ScheduleConfig
	var weekdays pq.Int64Array
	var blackout pq.StringArray

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.UTCOffsetMinutes,
		&cfg.OpeningHour,
		&cfg.ClosingHour,
		&weekdays,
		&blackout,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan schedule: %v", ErrScanRow, err)
	}

	cfg.ClosedWeekdays = make([]time.Weekday, 0, len(weekdays))
	for _, wd := range weekdays {
		cfg.ClosedWeekdays = append(cfg.ClosedWeekdays, time.Weekday(wd))
	}

	cfg.BlackoutDates = make([]time.Time, 0, len(blackout))
	for _, raw := range blackout {
		d, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: Get - parse blackout date %q: %v", ErrScanRow, raw, err)
		}
		cfg.BlackoutDates = append(cfg.BlackoutDates, d)
	}

	return &cfg, nil
}

// Upsert сохраняет расписание (создаёт строку, если её нет)
func (r *Repository) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	weekdays := make(pq.Int64Array, 0, len(cfg.ClosedWeekdays))
	for _, wd := range cfg.ClosedWeekdays {
		weekdays = append(weekdays, int64(wd))
	}
	blackout := make(pq.StringArray, 0, len(cfg.BlackoutDates))
	for _, d := range cfg.BlackoutDates {
		blackout = append(blackout, d.Format(domain.DateFormat))
	}

	query, args, err := psqlbuilder.Insert("studio_schedule").
		Columns("id", "utc_offset_minutes", "opening_hour", "closing_hour", "closed_weekdays", "blackout_dates").
		Values(singletonID, cfg.UTCOffsetMinutes, cfg.OpeningHour, cfg.ClosingHour, weekdays, blackout).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			utc_offset_minutes = EXCLUDED.utc_offset_minutes,
			opening_hour = EXCLUDED.opening_hour,
			closing_hour = EXCLUDED.closing_hour,
			closed_weekdays = EXCLUDED.closed_weekdays,
			blackout_dates = EXCLUDED.blackout_dates,
			updated_at = NOW()
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&cfg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return cfg, nil
}
