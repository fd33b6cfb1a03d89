package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	changeBookingStateHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/change_booking_state"
	createBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_booking"
	getBookingByReferenceHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_booking_by_reference"
	getMonthAvailabilityHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_month_availability"
	getScheduleHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_schedule"
	listBookingsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/list_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/reschedule_booking"
	updateScheduleHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/config"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/cache"
	bookingRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/booking"
	outboxRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/outbox"
	scheduleRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/schedule"
	sendgridClient "github.com/m04kA/SMC-StudioBooking/internal/integrations/sendgrid"
	telegramClient "github.com/m04kA/SMC-StudioBooking/internal/integrations/telegram"
	twilioClient "github.com/m04kA/SMC-StudioBooking/internal/integrations/twilio"
	"github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-StudioBooking/internal/service/bookings"
	lifecycleService "github.com/m04kA/SMC-StudioBooking/internal/service/lifecycle"
	scheduleService "github.com/m04kA/SMC-StudioBooking/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_availability"
	rescheduleBookingUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-StudioBooking/internal/worker/outbox"
	"github.com/m04kA/SMC-StudioBooking/migrations"
	"github.com/m04kA/SMC-StudioBooking/pkg/datelock"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/migrator"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-StudioBooking...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики: при выключенных метриках collector == nil, все методы no-op
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		if err := migrator.Up(db, migrations.FS, "."); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Доменные настройки
	defaultSchedule, err := cfg.Schedule.ToDomain()
	if err != nil {
		log.Fatal("Invalid schedule config: %v", err)
	}
	pricing := cfg.Pricing.ToDomain()

	// Репозитории и хранилище резервирований
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	reservationStore := bookingRepo.NewStore(bookingRepository, outboxRepository, txMgr)

	availabilityCache := cache.NewAvailabilityCache(cfg.Booking.CacheTTL())
	dateLocker := datelock.New()

	// Каналы уведомлений
	sinks := make([]outbox.Sink, 0, 3)

	if cfg.Notifications.Telegram.Enabled {
		tg, err := telegramClient.NewClient(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID, log)
		if err != nil {
			log.Fatal("Failed to initialize Telegram client: %v", err)
		}
		sinks = append(sinks, tg)
	}
	if cfg.Notifications.Twilio.Enabled {
		sinks = append(sinks, twilioClient.NewClient(
			cfg.Notifications.Twilio.AccountSID,
			cfg.Notifications.Twilio.AuthToken,
			cfg.Notifications.Twilio.FromNumber,
			log,
		))
	}
	if cfg.Notifications.SendGrid.Enabled {
		sinks = append(sinks, sendgridClient.NewClient(
			cfg.Notifications.SendGrid.APIKey,
			cfg.Notifications.SendGrid.FromEmail,
			cfg.Notifications.SendGrid.FromName,
			log,
		))
	}
	log.Info("Notification sinks initialized: %d", len(sinks))

	dispatcher := outbox.NewDispatcher(
		outboxRepository,
		txMgr,
		sinks,
		metricsCollector,
		outbox.Settings{
			Schedule:    cfg.Notifications.DispatchSchedule,
			BatchSize:   cfg.Notifications.BatchSize,
			MaxAttempts: cfg.Notifications.MaxAttempts,
			SendTimeout: cfg.Notifications.SendTimeout(),
			Lease:       cfg.Notifications.Lease(),
		},
		log,
	)
	if err := dispatcher.Start(); err != nil {
		log.Fatal("Failed to start outbox dispatcher: %v", err)
	}
	log.Info("Outbox dispatcher started (schedule=%s)", cfg.Notifications.DispatchSchedule)

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(scheduleRepository, defaultSchedule, availabilityCache, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	lifecycleSvc := lifecycleService.NewService(
		reservationStore,
		scheduleSvc,
		availabilityCache,
		dispatcher,
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		reservationStore,
		scheduleSvc,
		availability.NewCalculator(),
		availabilityCache,
		metricsCollector,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		reservationStore,
		scheduleSvc,
		dateLocker,
		availabilityCache,
		dispatcher,
		metricsCollector,
		createBookingUC.Settings{
			Pricing:        pricing,
			ReserveTimeout: cfg.Booking.ReserveTimeout(),
			PhoneRegion:    cfg.Booking.DefaultPhoneRegion,
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		reservationStore,
		scheduleSvc,
		dateLocker,
		availabilityCache,
		dispatcher,
		metricsCollector,
		rescheduleBookingUC.Settings{
			Pricing:        pricing,
			ReserveTimeout: cfg.Booking.ReserveTimeout(),
		},
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getMonthAvailability := getMonthAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBookingByReference := getBookingByReferenceHandler.NewHandler(bookingSvc, log)

	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	changeBookingState := changeBookingStateHandler.NewHandler(lifecycleSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	createAdminBooking := createBookingHandler.NewAdminHandler(createBookingUseCase, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	// Доступность часов на дату и сводка по месяцу
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/month", getMonthAvailability.Handle).Methods(http.MethodGet)

	// Расписание студии
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Бронирование с сайта и проверка по номеру
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/by-reference/{reference}", getBookingByReference.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют X-Actor header)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Actor)

	// --- Бронирования ---
	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings", createAdminBooking.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}/state", changeBookingState.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// --- Расписание ---
	admin.HandleFunc("/schedule", updateSchedule.Handle).Methods(http.MethodPut)

	// CORS для сайта студии и восстановление после паники
	handler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", middleware.HeaderActor}),
	)(r)
	handler = gorillaHandlers.RecoveryHandler(gorillaHandlers.PrintRecoveryStack(true))(handler)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Доставляем уже начатую пачку событий и останавливаем планировщик
	dispatcher.Stop()
	log.Info("Outbox dispatcher stopped")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
