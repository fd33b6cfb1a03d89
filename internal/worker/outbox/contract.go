package outbox

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// EventRepository очередь недоставленных событий
type EventRepository interface {
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Event, error)
	Lease(ctx context.Context, ids []int64, lease time.Duration) error
	MarkDelivered(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// TransactionManager короткая транзакция выборки и аренды пачки событий
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sink канал доставки событий (Telegram, SMS, email)
type Sink interface {
	Name() string
	Handle(ctx context.Context, event *domain.Event) error
}

// Metrics счётчики доставки
type Metrics interface {
	IncOutboxDelivery(sink, result string)
}

// Logger интерфейс логгера
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
