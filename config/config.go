package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// MongoDB connection string for appointment records.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Google credentials and providers.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	CalendarID               string `mapstructure:"CALENDAR_ID"`

	// Speech configuration.
	STTLanguageCode string `mapstructure:"STT_LANGUAGE_CODE"`
	TTSLanguageCode string `mapstructure:"TTS_LANGUAGE_CODE"`
	TTSVoice        string `mapstructure:"TTS_VOICE"`

	// Dialog configuration.
	ClinicTimezone    string `mapstructure:"CLINIC_TIMEZONE"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`

	// Per-call timeouts for external collaborators (seconds).
	STTTimeoutSeconds      int `mapstructure:"STT_TIMEOUT_SECONDS"`
	TTSTimeoutSeconds      int `mapstructure:"TTS_TIMEOUT_SECONDS"`
	LLMTimeoutSeconds      int `mapstructure:"LLM_TIMEOUT_SECONDS"`
	CalendarTimeoutSeconds int `mapstructure:"CALENDAR_TIMEOUT_SECONDS"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "service-account.json")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("STT_LANGUAGE_CODE", "en-US")
	viper.SetDefault("TTS_LANGUAGE_CODE", "en-GB")
	viper.SetDefault("TTS_VOICE", "en-GB-Neural2-A")
	viper.SetDefault("CLINIC_TIMEZONE", "Europe/London")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("STT_TIMEOUT_SECONDS", 15)
	viper.SetDefault("TTS_TIMEOUT_SECONDS", 15)
	viper.SetDefault("LLM_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CALENDAR_TIMEOUT_SECONDS", 15)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
