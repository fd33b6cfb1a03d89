package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор метрик сервиса
// Все методы безопасны для вызова на nil-получателе (метрики выключены)
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbConnections   *prometheus.GaugeVec
	dbWaitCount     prometheus.Gauge

	reservationsTotal      *prometheus.CounterVec
	transitionsTotal       *prometheus.CounterVec
	availabilityUnknown    prometheus.Counter
	availabilityCacheTotal *prometheus.CounterVec
	outboxDeliveriesTotal  *prometheus.CounterVec
}

// New создает и регистрирует метрики в собственном реестре
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "status"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_reservations_total",
			Help:        "Reservation attempts by result",
			ConstLabels: labels,
		}, []string{"result"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Booking state transitions",
			ConstLabels: labels,
		}, []string{"from", "to"}),
		availabilityUnknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_availability_unknown_total",
			Help:        "Availability responses degraded to UNKNOWN",
			ConstLabels: labels,
		}),
		availabilityCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_availability_cache_total",
			Help:        "Availability cache lookups by result",
			ConstLabels: labels,
		}, []string{"result"}),
		outboxDeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_outbox_deliveries_total",
			Help:        "Domain event deliveries by sink and result",
			ConstLabels: labels,
		}, []string{"sink", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbConnections,
		m.dbWaitCount,
		m.reservationsTotal,
		m.transitionsTotal,
		m.availabilityUnknown,
		m.availabilityCacheTotal,
		m.outboxDeliveriesTotal,
	)

	return m
}

// Handler возвращает HTTP handler для эндпоинта /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет состояние пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(open))
	m.dbConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(idle))
	m.dbWaitCount.Set(float64(waitCount))
}

// IncReservation фиксирует результат попытки бронирования (created, conflict, invalid, error)
func (m *Metrics) IncReservation(result string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(result).Inc()
}

// IncTransition фиксирует переход состояния бронирования
func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

// IncAvailabilityUnknown фиксирует деградацию ответа о доступности
func (m *Metrics) IncAvailabilityUnknown() {
	if m == nil {
		return
	}
	m.availabilityUnknown.Inc()
}

// IncAvailabilityCache фиксирует попадание/промах кеша доступности
func (m *Metrics) IncAvailabilityCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.availabilityCacheTotal.WithLabelValues(result).Inc()
}

// IncOutboxDelivery фиксирует доставку доменного события
func (m *Metrics) IncOutboxDelivery(sink, result string) {
	if m == nil {
		return
	}
	m.outboxDeliveriesTotal.WithLabelValues(sink, result).Inc()
}
