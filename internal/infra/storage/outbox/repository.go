package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

// Repository durable outbox доменных событий
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает репозиторий outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append сохраняет событие; должен вызываться в транзакции изменения бронирования
func (r *Repository) Append(ctx context.Context, event *domain.Event) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns("event_id", "booking_id", "kind", "payload").
		Values(event.EventID, event.BookingID, event.Kind, string(event.Payload)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// FetchPending выбирает недоставленные события без действующей аренды
// В транзакции строки блокируются с SKIP LOCKED, чтобы несколько экземпляров сервиса не выбрали одно событие
func (r *Repository) FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"event_id",
		"booking_id",
		"kind",
		"payload",
		"attempts",
		"last_error",
		"created_at",
	).
		From("booking_events").
		Where(squirrel.Eq{"delivered_at": nil}).
		Where(squirrel.Or{
			squirrel.Eq{"locked_until": nil},
			squirrel.Expr("locked_until < NOW()"),
		}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if maxAttempts > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"attempts": maxAttempts})
	}
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.BookingID, &e.Kind, &payload, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - scan row: %v", ErrScanRow, err)
		}
		e.Payload = payload
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchPending - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// Lease закрепляет события за текущим обработчиком до истечения срока аренды
// Вызывается в той же транзакции, что и FetchPending
func (r *Repository) Lease(ctx context.Context, ids []int64, lease time.Duration) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("locked_until", squirrel.Expr("NOW() + make_interval(secs => ?)", lease.Seconds())).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Lease - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Lease - execute update: %v", ErrExecQuery, err)
	}
	return nil
}

// MarkDelivered отмечает событие доставленным
func (r *Repository) MarkDelivered(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("delivered_at", squirrel.Expr("NOW()")).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil).
		Set("locked_until", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkDelivered - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, query, args, "MarkDelivered")
}

// MarkFailed увеличивает счётчик попыток, сохраняет последнюю ошибку и снимает аренду
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_events").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", reason).
		Set("locked_until", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, query, args, "MarkFailed")
}

func (r *Repository) execOne(ctx context.Context, executor dbmetrics.DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
