package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Schedule      ScheduleConfig      `toml:"schedule"`
	Pricing       PricingConfig       `toml:"pricing"`
	Booking       BookingConfig       `toml:"booking"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int      `toml:"http_port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	IdleTimeout     int      `toml:"idle_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ScheduleConfig расписание по умолчанию (если в БД нет строки studio_schedule)
type ScheduleConfig struct {
	UTCOffsetMinutes int      `toml:"utc_offset_minutes"`
	OpeningHour      int      `toml:"opening_hour"`
	ClosingHour      int      `toml:"closing_hour"`
	ClosedWeekdays   []int    `toml:"closed_weekdays"`
	BlackoutDates    []string `toml:"blackout_dates"`
}

// PricingConfig входные данные функции цены
type PricingConfig struct {
	HourlyRate           float64 `toml:"hourly_rate"`
	FreeHeadcount        int     `toml:"free_headcount"`
	ExtraPersonHourlyFee float64 `toml:"extra_person_hourly_fee"`
}

// BookingConfig настройки бронирования
type BookingConfig struct {
	ReserveTimeoutSeconds int    `toml:"reserve_timeout_seconds"`
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`
	DefaultPhoneRegion    string `toml:"default_phone_region"`
}

// ReserveTimeout возвращает таймаут атомарного резервирования
func (b BookingConfig) ReserveTimeout() time.Duration {
	return time.Duration(b.ReserveTimeoutSeconds) * time.Second
}

// CacheTTL возвращает время жизни кеша доступности
func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSeconds) * time.Second
}

// NotificationsConfig настройки доставки доменных событий
type NotificationsConfig struct {
	DispatchSchedule   string         `toml:"dispatch_schedule"` // cron spec, например "@every 10s"
	BatchSize          int            `toml:"batch_size"`
	MaxAttempts        int            `toml:"max_attempts"`
	SendTimeoutSeconds int            `toml:"send_timeout_seconds"`
	LeaseSeconds       int            `toml:"lease_seconds"` // 0 - рассчитывается из batch_size и send_timeout_seconds
	Telegram           TelegramConfig `toml:"telegram"`
	Twilio             TwilioConfig   `toml:"twilio"`
	SendGrid           SendGridConfig `toml:"sendgrid"`
}

// SendTimeout возвращает таймаут одной отправки во внешний канал
func (n NotificationsConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

// Lease возвращает срок аренды выбранной пачки событий
func (n NotificationsConfig) Lease() time.Duration {
	return time.Duration(n.LeaseSeconds) * time.Second
}

// TelegramConfig уведомления администраторов
type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
}

// TwilioConfig SMS клиенту
type TwilioConfig struct {
	Enabled    bool   `toml:"enabled"`
	AccountSID string `toml:"account_sid"`
	AuthToken  string `toml:"auth_token"`
	FromNumber string `toml:"from_number"`
}

// SendGridConfig email клиенту
type SendGridConfig struct {
	Enabled   bool   `toml:"enabled"`
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
}

// Load читает TOML файл, затем применяет переменные окружения (и .env, если он есть)
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logs: LogsConfig{
			File:  "logs/app.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "studio-booking",
		},
		Schedule: ScheduleConfig{
			UTCOffsetMinutes: 180,
			OpeningHour:      9,
			ClosingHour:      21,
		},
		Pricing: PricingConfig{
			HourlyRate:           2000,
			FreeHeadcount:        5,
			ExtraPersonHourlyFee: 300,
		},
		Booking: BookingConfig{
			ReserveTimeoutSeconds: 5,
			CacheTTLSeconds:       120,
			DefaultPhoneRegion:    "RU",
		},
		Notifications: NotificationsConfig{
			DispatchSchedule:   "@every 10s",
			BatchSize:          50,
			MaxAttempts:        10,
			SendTimeoutSeconds: 10,
		},
	}
}

// applyEnv переопределяет секреты и параметры деплоя из окружения
func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Logs.Level, "LOG_LEVEL")
	setString(&cfg.Notifications.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Notifications.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Notifications.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Notifications.Twilio.FromNumber, "TWILIO_FROM_NUMBER")
	setString(&cfg.Notifications.SendGrid.APIKey, "SENDGRID_API_KEY")
	setString(&cfg.Notifications.SendGrid.FromEmail, "SENDGRID_FROM_EMAIL")

	if err := setInt(&cfg.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Server.HTTPPort, "HTTP_PORT"); err != nil {
		return err
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.Notifications.Telegram.ChatID = id
	}
	return nil
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("server.http_port must be positive, got %d", c.Server.HTTPPort)
	}
	if c.Pricing.HourlyRate < 0 || c.Pricing.ExtraPersonHourlyFee < 0 || c.Pricing.FreeHeadcount < 0 {
		return errors.New("pricing values must not be negative")
	}
	if c.Booking.ReserveTimeoutSeconds <= 0 {
		return fmt.Errorf("booking.reserve_timeout_seconds must be positive, got %d", c.Booking.ReserveTimeoutSeconds)
	}
	if c.Booking.CacheTTLSeconds < 0 {
		return fmt.Errorf("booking.cache_ttl_seconds must not be negative, got %d", c.Booking.CacheTTLSeconds)
	}
	if c.Notifications.BatchSize <= 0 {
		return fmt.Errorf("notifications.batch_size must be positive, got %d", c.Notifications.BatchSize)
	}
	if c.Notifications.LeaseSeconds < 0 {
		return fmt.Errorf("notifications.lease_seconds must not be negative, got %d", c.Notifications.LeaseSeconds)
	}
	return nil
}
