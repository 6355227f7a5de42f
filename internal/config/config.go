package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string `env:"ENV" env-default:"development"`
	DBDSN         string `env:"DB_DSN" env-required:"true"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"true"`

	HTTPServer
	Redis
	Booking

	AMQPURL       string `env:"AMQP_URL"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	// 0 отключает фоновый отчёт об истёкших уроках
	LessonReportInterval time.Duration `env:"LESSON_REPORT_INTERVAL" env-default:"24h"`
}

type HTTPServer struct {
	Address            string        `env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout            time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout        time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout    time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

// Redis is optional. With an empty address bookings rely on the database
// row lock only.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type Booking struct {
	LockTTL       time.Duration `env:"BOOKING_LOCK_TTL" env-default:"10s"`
	LockWait      time.Duration `env:"BOOKING_LOCK_WAIT" env-default:"2s"`
	NotifyTimeout time.Duration `env:"BOOKING_NOTIFY_TIMEOUT" env-default:"5s"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.LessonReportInterval < 0 {
		return nil, fmt.Errorf("LESSON_REPORT_INTERVAL must not be negative")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
