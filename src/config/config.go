package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// GlobalConfig holds every tunable the kiosk reads at startup. HOST and PORT
// are required; everything else falls back to a standalone-kiosk default.
type GlobalConfig struct {
	Host string
	Port string

	UploadDir string

	SessionTTL    time.Duration
	SweepInterval time.Duration

	MaxPages          int
	PricePerPage      float64
	ColorPricePerPage float64

	PrinterID     string
	PaperCapacity int

	PrintMinDuration     time.Duration
	PrintMaxDuration     time.Duration
	PrintPerPageDuration time.Duration

	DBDriver string
	DBDSN    string

	AdminKey string

	RabbitHost string
	RabbitPort int32
	RabbitUser string
	RabbitPass string
}

// NewConfig loads configuration from the environment.
func NewConfig() (GlobalConfig, error) {
	host := os.Getenv("HOST")
	if host == "" {
		return GlobalConfig{}, fmt.Errorf("HOST environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		return GlobalConfig{}, fmt.Errorf("PORT environment variable is required")
	}

	ttlMinutes, err := intEnv("SESSION_TTL_MINUTES", 10)
	if err != nil {
		return GlobalConfig{}, err
	}

	sweepSeconds, err := intEnv("SWEEP_INTERVAL_SECONDS", 60)
	if err != nil {
		return GlobalConfig{}, err
	}

	maxPages, err := intEnv("MAX_PAGES", 200)
	if err != nil {
		return GlobalConfig{}, err
	}

	pricePerPage, err := floatEnv("PRICE_PER_PAGE", 0.10)
	if err != nil {
		return GlobalConfig{}, err
	}

	colorPrice, err := floatEnv("COLOR_PRICE_PER_PAGE", 0.25)
	if err != nil {
		return GlobalConfig{}, err
	}

	paperCapacity, err := intEnv("PAPER_CAPACITY", 500)
	if err != nil {
		return GlobalConfig{}, err
	}

	printMin, err := intEnv("PRINT_MIN_SECONDS", 2)
	if err != nil {
		return GlobalConfig{}, err
	}

	printMax, err := intEnv("PRINT_MAX_SECONDS", 30)
	if err != nil {
		return GlobalConfig{}, err
	}

	perPageMillis, err := intEnv("PRINT_PER_PAGE_MILLIS", 500)
	if err != nil {
		return GlobalConfig{}, err
	}

	var rabbitPort int32
	rabbitHost := os.Getenv("RABBITMQ_HOST")
	if rabbitHost != "" {
		p, err := strconv.ParseInt(os.Getenv("RABBITMQ_PORT"), 10, 32)
		if err != nil {
			return GlobalConfig{}, fmt.Errorf("RABBITMQ_PORT must be a valid integer: %w", err)
		}
		rabbitPort = int32(p)
	}

	return GlobalConfig{
		Host:                 host,
		Port:                 port,
		UploadDir:            stringEnv("UPLOAD_DIR", "./uploads"),
		SessionTTL:           time.Duration(ttlMinutes) * time.Minute,
		SweepInterval:        time.Duration(sweepSeconds) * time.Second,
		MaxPages:             maxPages,
		PricePerPage:         pricePerPage,
		ColorPricePerPage:    colorPrice,
		PrinterID:            stringEnv("PRINTER_ID", "kiosk-printer-1"),
		PaperCapacity:        paperCapacity,
		PrintMinDuration:     time.Duration(printMin) * time.Second,
		PrintMaxDuration:     time.Duration(printMax) * time.Second,
		PrintPerPageDuration: time.Duration(perPageMillis) * time.Millisecond,
		DBDriver:             stringEnv("DB_DRIVER", "sqlite"),
		DBDSN:                stringEnv("DB_DSN", "file:kiosk.db?_pragma=busy_timeout(5000)"),
		AdminKey:             stringEnv("ADMIN_KEY", "change-me"),
		RabbitHost:           rabbitHost,
		RabbitPort:           rabbitPort,
		RabbitUser:           os.Getenv("RABBITMQ_USER"),
		RabbitPass:           os.Getenv("RABBITMQ_PASS"),
	}, nil
}

// GetHost returns the bind host.
func (c *GlobalConfig) GetHost() string { return c.Host }

// GetPort returns the bind port.
func (c *GlobalConfig) GetPort() string { return c.Port }

// AMQPURL builds the RabbitMQ connection string; empty when events are disabled.
func (c *GlobalConfig) AMQPURL() string {
	if c.RabbitHost == "" {
		return ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.RabbitUser, c.RabbitPass, c.RabbitHost, c.RabbitPort)
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}
