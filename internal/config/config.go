package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Events    EventsConfig
	Calendar  CalendarConfig
	Placement PlacementConfig
	Notify    NotifyConfig
	Lookup    LookupConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
	JWTSecret   string
}

type DatabaseConfig struct {
	Connection string
	LogQueries bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type EventsConfig struct {
	EmitEnabled             bool
	ArrivedDepartedDisabled bool
	// Sink selects the emitter: "nats", "redis" or "channel".
	Sink              string
	NatsURL           string
	NatsSubjectPrefix string
	RedisURL          string
	RedisChannel      string
	ChannelTopic      string
	ConsumerGroup     string
	JournalFilePath   string
	DedupTTL          time.Duration
}

type CalendarConfig struct {
	BankHolidays string // comma separated YYYY-MM-DD
	WeekendDays  string // comma separated weekday names
}

type PlacementConfig struct {
	ReopenOnAppeal bool
}

type NotifyConfig struct {
	BookingMadeTemplateId      string
	BookingWithdrawnTemplateId string
	PremisesFallbackEmail      string
}

type LookupConfig struct {
	CommunityAPIURL string
	Timeout         time.Duration
	CacheTTL        time.Duration
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3000"),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "placement-engine.log"),
			JWTSecret:   getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogQueries: getEnvAsBool("DB_LOG_QUERIES", false),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Placement Engine"),
		},
		Events: EventsConfig{
			EmitEnabled:             getEnvAsBool("DOMAIN_EVENTS_EMIT_ENABLED", true),
			ArrivedDepartedDisabled: getEnvAsBool("DOMAIN_EVENTS_ARRIVED_DEPARTED_DISABLED", false),
			Sink:                    getEnv("DOMAIN_EVENTS_SINK", "channel"),
			NatsURL:                 getEnv("NATS_URL", "nats://localhost:4222"),
			NatsSubjectPrefix:       getEnv("NATS_SUBJECT_PREFIX", "placement.events"),
			RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisChannel:            getEnv("REDIS_EVENTS_CHANNEL", "placement-domain-events"),
			ChannelTopic:            getEnv("DOMAIN_EVENTS_TOPIC", "DOMAIN_EVENTS"),
			ConsumerGroup:           getEnv("DOMAIN_EVENTS_CONSUMER_GROUP", "placement-consumer"),
			JournalFilePath:         getEnv("DOMAIN_EVENTS_JOURNAL_PATH", "received-events.log"),
			DedupTTL:                getEnvAsDuration("DOMAIN_EVENTS_DEDUP_TTL", 24*time.Hour),
		},
		Calendar: CalendarConfig{
			BankHolidays: getEnv("CALENDAR_BANK_HOLIDAYS", ""),
			WeekendDays:  getEnv("CALENDAR_WEEKEND_DAYS", "Saturday,Sunday"),
		},
		Placement: PlacementConfig{
			ReopenOnAppeal: getEnvAsBool("PLACEMENT_REOPEN_ON_APPEAL", true),
		},
		Notify: NotifyConfig{
			BookingMadeTemplateId:      getEnv("NOTIFY_BOOKING_MADE_TEMPLATE", "booking-made"),
			BookingWithdrawnTemplateId: getEnv("NOTIFY_BOOKING_WITHDRAWN_TEMPLATE", "booking-withdrawn"),
			PremisesFallbackEmail:      getEnv("NOTIFY_PREMISES_FALLBACK_EMAIL", ""),
		},
		Lookup: LookupConfig{
			CommunityAPIURL: getEnv("COMMUNITY_API_URL", "http://localhost:8090"),
			Timeout:         getEnvAsDuration("COMMUNITY_API_TIMEOUT", 10*time.Second),
			CacheTTL:        getEnvAsDuration("COMMUNITY_API_CACHE_TTL", 5*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "placement-engine-be"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
