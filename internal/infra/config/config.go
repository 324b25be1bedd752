package config

import (
	"fmt"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken string
	StoreDriver   string
	DatabaseURL   string
	SQLitePath    string
	LogLevel      string
	Environment   string
	Timezone      string

	CronSpecRollover string // Milestone day-rollover sweep
	CronSpecDailyTip string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string
	TwilioBaseURL        string

	SendGridAPIKey  string
	SenderEmail     string
	SendGridBaseURL string

	GeminiAPIKey           string
	GeminiModel            string
	GeminiBaseURL          string
	PersonalizationTimeout time.Duration
	DeliveryTimeout        time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SQLITE_PATH", "data/hydration.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("TZ", "Local")
	v.SetDefault("CRON_SPEC_ROLLOVER", "* * * * *")  // Every minute
	v.SetDefault("CRON_SPEC_DAILY_TIP", "0 9 * * *") // 9 AM daily
	v.SetDefault("TWILIO_BASE_URL", "https://api.twilio.com")
	v.SetDefault("SENDER_EMAIL", "hydration@example.com")
	v.SetDefault("SENDGRID_BASE_URL", "https://api.sendgrid.com")
	v.SetDefault("GEMINI_MODEL", "gemini-pro")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("PERSONALIZATION_TIMEOUT", 8*time.Second)
	v.SetDefault("DELIVERY_TIMEOUT", 10*time.Second)
}

// Load reads configuration from environment variables, a .env file (if present)
// and an optional YAML file named by CONFIG_FILE.
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		TelegramToken:          v.GetString("TELEGRAM_TOKEN"),
		StoreDriver:            strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		SQLitePath:             v.GetString("SQLITE_PATH"),
		LogLevel:               strings.ToLower(v.GetString("LOG_LEVEL")),
		Environment:            strings.ToLower(v.GetString("ENVIRONMENT")),
		Timezone:               v.GetString("TZ"),
		CronSpecRollover:       v.GetString("CRON_SPEC_ROLLOVER"),
		CronSpecDailyTip:       v.GetString("CRON_SPEC_DAILY_TIP"),
		TwilioAccountSID:       v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:      v.GetString("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber:   v.GetString("TWILIO_WHATSAPP_NUMBER"),
		TwilioBaseURL:          v.GetString("TWILIO_BASE_URL"),
		SendGridAPIKey:         v.GetString("SENDGRID_API_KEY"),
		SenderEmail:            v.GetString("SENDER_EMAIL"),
		SendGridBaseURL:        v.GetString("SENDGRID_BASE_URL"),
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:          v.GetString("GEMINI_BASE_URL"),
		PersonalizationTimeout: v.GetDuration("PERSONALIZATION_TIMEOUT"),
		DeliveryTimeout:        v.GetDuration("DELIVERY_TIMEOUT"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.TwilioWhatsAppNumber == "" {
		cfg.TwilioWhatsAppNumber = cfg.TwilioPhoneNumber
	}

	if cfg.PersonalizationTimeout <= 0 {
		return nil, fmt.Errorf("invalid PERSONALIZATION_TIMEOUT: %s", cfg.PersonalizationTimeout)
	}
	if cfg.DeliveryTimeout <= 0 {
		return nil, fmt.Errorf("invalid DELIVERY_TIMEOUT: %s", cfg.DeliveryTimeout)
	}

	return cfg, nil
}

// Location resolves Timezone. "Local" and empty mean the runtime's local zone.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}
