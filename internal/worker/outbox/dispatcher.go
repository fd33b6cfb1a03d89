// Package outbox delivers committed booking events to notification sinks.
//
// Delivery is at-least-once: an event stays in the queue until every sink
// accepts it, and sinks that already succeeded are skipped on retry while
// the process remembers them. A batch is leased in a short transaction and
// sinks are called outside of it, so a slow channel holds no database locks.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	resultDelivered = "delivered"
	resultFailed    = "failed"
	resultSkipped   = "skipped"

	deliveredTTL    = 24 * time.Hour
	maxReasonLength = 1000

	defaultLease = 5 * time.Minute
	leaseMargin  = time.Minute
)

// ErrInvalidSchedule возвращается при некорректном cron-выражении
var ErrInvalidSchedule = errors.New("outbox.dispatcher: invalid schedule")

// Settings параметры диспетчера
type Settings struct {
	Schedule    string // cron spec, например "@every 10s"
	BatchSize   int
	MaxAttempts int
	SendTimeout time.Duration
	Lease       time.Duration // 0 - по числу событий, каналов и SendTimeout
}

// Dispatcher разбирает outbox по расписанию и по сигналу Kick после фиксации изменений
type Dispatcher struct {
	repo      EventRepository
	txManager TransactionManager
	sinks     []Sink
	metrics   Metrics
	settings  Settings
	logger    Logger

	// eventID:sink уже доставленных событий
	delivered *gocache.Cache

	cron   *cron.Cron
	kick   chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	runMu  sync.Mutex
	closed sync.Once
}

// NewDispatcher создает диспетчер
func NewDispatcher(
	repo EventRepository,
	txManager TransactionManager,
	sinks []Sink,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		txManager: txManager,
		sinks:     sinks,
		metrics:   metrics,
		settings:  settings,
		logger:    logger,
		delivered: gocache.New(deliveredTTL, deliveredTTL),
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

// Start запускает планировщик и цикл обработки
func (d *Dispatcher) Start() error {
	d.cron = cron.New()
	if _, err := d.cron.AddFunc(d.settings.Schedule, d.Kick); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, d.settings.Schedule, err)
	}

	d.wg.Add(1)
	go d.loop()

	d.cron.Start()
	d.logger.Info("Outbox dispatcher started (schedule=%s, batch=%d, sinks=%d)",
		d.settings.Schedule, d.settings.BatchSize, len(d.sinks))

	// события, оставшиеся с прошлого запуска
	d.Kick()
	return nil
}

// Stop останавливает планировщик и дожидается текущей итерации
func (d *Dispatcher) Stop() {
	d.closed.Do(func() {
		if d.cron != nil {
			<-d.cron.Stop().Done()
		}
		close(d.stop)
		d.wg.Wait()
		d.logger.Info("Outbox dispatcher stopped")
	})
}

// Kick просит диспетчер разобрать очередь как можно скорее; не блокирует
func (d *Dispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stop:
			return
		case <-d.kick:
			if _, err := d.DispatchOnce(context.Background()); err != nil {
				d.logger.Error("Outbox: dispatch failed: %v", err)
			}
		}
	}
}

// DispatchOnce обрабатывает одну пачку событий и возвращает число доставленных
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	events, err := d.claim(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}
	d.logger.Debug("Outbox: leased %d pending events", len(events))

	delivered := 0
	for _, event := range events {
		if failures := d.deliver(ctx, event); len(failures) > 0 {
			reason := truncate(strings.Join(failures, "; "), maxReasonLength)
			if err := d.repo.MarkFailed(ctx, event.ID, reason); err != nil {
				return delivered, err
			}
			d.logger.Warn("Outbox: event %s (booking_id=%d, attempt %d) not delivered: %s",
				event.EventID, event.BookingID, event.Attempts+1, reason)
			continue
		}

		if err := d.repo.MarkDelivered(ctx, event.ID); err != nil {
			return delivered, err
		}
		delivered++
	}

	if delivered > 0 {
		d.logger.Info("Outbox: delivered %d events", delivered)
	}
	return delivered, nil
}

// claim выбирает пачку и арендует её; транзакция завершается до обращения к каналам
// Неотмеченные события после истечения аренды снова попадают в выборку
func (d *Dispatcher) claim(ctx context.Context) ([]*domain.Event, error) {
	var events []*domain.Event
	err := d.txManager.Do(ctx, func(txCtx context.Context) error {
		fetched, err := d.repo.FetchPending(txCtx, d.settings.BatchSize, d.settings.MaxAttempts)
		if err != nil {
			return err
		}
		if len(fetched) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(fetched))
		for _, event := range fetched {
			ids = append(ids, event.ID)
		}
		if err := d.repo.Lease(txCtx, ids, d.leaseFor(len(fetched))); err != nil {
			return err
		}

		events = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// leaseFor срок аренды пачки из n событий
func (d *Dispatcher) leaseFor(n int) time.Duration {
	if d.settings.Lease > 0 {
		return d.settings.Lease
	}
	if d.settings.SendTimeout <= 0 || len(d.sinks) == 0 {
		return defaultLease
	}
	return time.Duration(n*len(d.sinks))*d.settings.SendTimeout + leaseMargin
}

// deliver отдаёт событие всем каналам и возвращает описания ошибок
func (d *Dispatcher) deliver(ctx context.Context, event *domain.Event) []string {
	failures := make([]string, 0)

	for _, sink := range d.sinks {
		key := event.EventID.String() + ":" + sink.Name()
		if _, ok := d.delivered.Get(key); ok {
			d.metrics.IncOutboxDelivery(sink.Name(), resultSkipped)
			continue
		}

		sendCtx, cancel := d.sendContext(ctx)
		err := sink.Handle(sendCtx, event)
		cancel()

		if err != nil {
			d.metrics.IncOutboxDelivery(sink.Name(), resultFailed)
			failures = append(failures, fmt.Sprintf("%s: %v", sink.Name(), err))
			continue
		}

		d.delivered.SetDefault(key, struct{}{})
		d.metrics.IncOutboxDelivery(sink.Name(), resultDelivered)
	}

	return failures
}

func (d *Dispatcher) sendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.settings.SendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.settings.SendTimeout)
}

// truncate обрезает строку по границе руны
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
