package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
)

// Config holds application configuration.
type Config struct {
	Port           string `mapstructure:"PORT" validate:"required,numeric"`
	IsProduction   bool   `mapstructure:"IS_PRODUCTION"`
	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	StorageDriver  string `mapstructure:"STORAGE_DRIVER" validate:"oneof=postgres badger"`
	DatabaseURL    string `mapstructure:"PGSQL_URL" validate:"required_if=StorageDriver postgres"`
	BadgerPath     string `mapstructure:"BADGER_PATH"` // empty runs Badger in memory
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH" validate:"required_if=StorageDriver postgres"`
	RunMigrations  bool   `mapstructure:"RUN_MIGRATIONS"`
	SeedStaticData bool   `mapstructure:"SEED_STATIC_DATA"`

	JWTSecret         string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	JWTExpiryDuration time.Duration `mapstructure:"JWT_EXPIRY_DURATION" validate:"gt=0s"`
	JWTIssuer         string        `mapstructure:"JWT_ISSUER" validate:"required"`
	AdminUsername     string        `mapstructure:"ADMIN_USERNAME" validate:"required"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH" validate:"required"`

	CurrencyBeacon CurrencyBeaconConfig
	Resilience     ResilienceConfig

	MockProviderSeed   uint64   `mapstructure:"MOCK_PROVIDER_SEED"`
	RateLimit          string   `mapstructure:"RATE_LIMIT" validate:"required"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"min=1"`
	KafkaBrokers       []string `mapstructure:"KAFKA_BROKERS"`
	KafkaFailoverTopic string   `mapstructure:"KAFKA_FAILOVER_TOPIC" validate:"required_with=KafkaBrokers"`
	ImportConcurrency  int      `mapstructure:"IMPORT_CONCURRENCY" validate:"gte=1,lte=32"`
}

// CurrencyBeaconConfig configures the live provider adapter.
type CurrencyBeaconConfig struct {
	APIKey        string        `mapstructure:"CURRENCY_BEACON_API_KEY" validate:"required"`
	SpotURL       string        `mapstructure:"CURRENCY_BEACON_SPOT_URL" validate:"required,url"`
	HistoricalURL string        `mapstructure:"CURRENCY_BEACON_HISTORICAL_URL" validate:"required,url"`
	TimeseriesURL string        `mapstructure:"CURRENCY_BEACON_TIMESERIES_URL" validate:"required,url"`
	HTTPTimeout   time.Duration `mapstructure:"PROVIDER_HTTP_TIMEOUT" validate:"gt=0s"`
}

// ResilienceConfig tunes retries and the circuit breaker around provider calls.
type ResilienceConfig struct {
	CallTimeout             time.Duration `mapstructure:"PROVIDER_CALL_TIMEOUT" validate:"gt=0s"`
	MaxAttempts             int           `mapstructure:"RETRY_MAX_ATTEMPTS" validate:"gte=1"`
	InitialInterval         time.Duration `mapstructure:"RETRY_INITIAL_INTERVAL" validate:"gt=0s"`
	MaxInterval             time.Duration `mapstructure:"RETRY_MAX_INTERVAL" validate:"gtefield=InitialInterval"`
	Multiplier              float64       `mapstructure:"RETRY_MULTIPLIER" validate:"gte=1"`
	BreakerFailureThreshold uint32        `mapstructure:"BREAKER_FAILURE_THRESHOLD" validate:"gte=1"`
	BreakerCooldown         time.Duration `mapstructure:"BREAKER_COOLDOWN" validate:"gt=0s"`
}

// Error lists every configuration problem found at startup.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *Error) Unwrap() error {
	return apperrors.ErrValidation
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("BADGER_PATH", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("SEED_STATIC_DATA", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "mycurrency")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("CURRENCY_BEACON_API_KEY", "")
	v.SetDefault("CURRENCY_BEACON_SPOT_URL", "https://api.currencybeacon.com/v1/convert")
	v.SetDefault("CURRENCY_BEACON_HISTORICAL_URL", "https://api.currencybeacon.com/v1/historical")
	v.SetDefault("CURRENCY_BEACON_TIMESERIES_URL", "https://api.currencybeacon.com/v1/timeseries")
	v.SetDefault("PROVIDER_HTTP_TIMEOUT", "5s")
	v.SetDefault("PROVIDER_CALL_TIMEOUT", "45s")
	v.SetDefault("RETRY_MAX_ATTEMPTS", 5)
	v.SetDefault("RETRY_INITIAL_INTERVAL", "1s")
	v.SetDefault("RETRY_MAX_INTERVAL", "10s")
	v.SetDefault("RETRY_MULTIPLIER", 2.0)
	v.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
	v.SetDefault("BREAKER_COOLDOWN", "120s")
	v.SetDefault("MOCK_PROVIDER_SEED", 0)
	v.SetDefault("RATE_LIMIT", "5-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_FAILOVER_TOPIC", "")
	v.SetDefault("IMPORT_CONCURRENCY", 4)
}

// LoadConfig loads configuration from environment variables and .env file if present,
// then validates it. Every problem is reported in a single *Error.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var problems []string
	duration := func(key string) time.Duration {
		raw := v.GetString(key)
		d, err := time.ParseDuration(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid duration %q", key, raw))
		}
		return d
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		IsProduction:      v.GetBool("IS_PRODUCTION"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		StorageDriver:     strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:       v.GetString("PGSQL_URL"),
		BadgerPath:        v.GetString("BADGER_PATH"),
		MigrationsPath:    v.GetString("MIGRATIONS_PATH"),
		RunMigrations:     v.GetBool("RUN_MIGRATIONS"),
		SeedStaticData:    v.GetBool("SEED_STATIC_DATA"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiryDuration: duration("JWT_EXPIRY_DURATION"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		CurrencyBeacon: CurrencyBeaconConfig{
			APIKey:        v.GetString("CURRENCY_BEACON_API_KEY"),
			SpotURL:       v.GetString("CURRENCY_BEACON_SPOT_URL"),
			HistoricalURL: v.GetString("CURRENCY_BEACON_HISTORICAL_URL"),
			TimeseriesURL: v.GetString("CURRENCY_BEACON_TIMESERIES_URL"),
			HTTPTimeout:   duration("PROVIDER_HTTP_TIMEOUT"),
		},
		Resilience: ResilienceConfig{
			CallTimeout:             duration("PROVIDER_CALL_TIMEOUT"),
			MaxAttempts:             v.GetInt("RETRY_MAX_ATTEMPTS"),
			InitialInterval:         duration("RETRY_INITIAL_INTERVAL"),
			MaxInterval:             duration("RETRY_MAX_INTERVAL"),
			Multiplier:              v.GetFloat64("RETRY_MULTIPLIER"),
			BreakerFailureThreshold: v.GetUint32("BREAKER_FAILURE_THRESHOLD"),
			BreakerCooldown:         duration("BREAKER_COOLDOWN"),
		},
		MockProviderSeed:   v.GetUint64("MOCK_PROVIDER_SEED"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaFailoverTopic: v.GetString("KAFKA_FAILOVER_TOPIC"),
		ImportConcurrency:  v.GetInt("IMPORT_CONCURRENCY"),
	}

	problems = append(problems, validate(cfg)...)
	if len(problems) > 0 {
		return nil, &Error{Problems: problems}
	}
	return cfg, nil
}

// validate runs the struct tags and names each failing field by its environment key.
func validate(cfg *Config) []string {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("mapstructure"); name != "" {
			return name
		}
		return f.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if", "required_with":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		default:
			problems = append(problems, fmt.Sprintf("%s: failed %q check", fe.Field(), fe.Tag()+paramSuffix(fe.Param())))
		}
	}
	return problems
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
