package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Engine   EngineConfig
	Requests RequestsConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes the conflict engine's slot grid and allocation caching.
type EngineConfig struct {
	GridStartMinutes    int
	GridEndMinutes      int
	GridStepMinutes     int
	AllocationCacheTTL  time.Duration
	DefaultSlotDuration int
}

// RequestsConfig governs the change-request workflow.
type RequestsConfig struct {
	Enabled          bool
	NotifyWorkers    int
	NotifyRetries    int
	NotifyRetryDelay time.Duration
	MaxReasonLength  int
}

// ExportsConfig toggles allocation table exports and controls the
// on-disk archive of generated files.
type ExportsConfig struct {
	Enabled     bool
	Dir         string
	DownloadTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		GridStartMinutes:    v.GetInt("ENGINE_GRID_START_MINUTES"),
		GridEndMinutes:      v.GetInt("ENGINE_GRID_END_MINUTES"),
		GridStepMinutes:     v.GetInt("ENGINE_GRID_STEP_MINUTES"),
		AllocationCacheTTL:  parseDuration(v.GetString("ENGINE_ALLOCATION_CACHE_TTL"), 5*time.Minute),
		DefaultSlotDuration: v.GetInt("ENGINE_DEFAULT_SLOT_DURATION"),
	}

	cfg.Requests = RequestsConfig{
		Enabled:          v.GetBool("ENABLE_CHANGE_REQUESTS"),
		NotifyWorkers:    v.GetInt("REQUESTS_NOTIFY_WORKERS"),
		NotifyRetries:    v.GetInt("REQUESTS_NOTIFY_RETRIES"),
		NotifyRetryDelay: parseDuration(v.GetString("REQUESTS_NOTIFY_RETRY_DELAY"), 5*time.Second),
		MaxReasonLength:  v.GetInt("REQUESTS_MAX_REASON_LENGTH"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:     v.GetBool("ENABLE_EXPORTS"),
		Dir:         v.GetString("EXPORTS_DIR"),
		DownloadTTL: parseDuration(v.GetString("EXPORTS_DOWNLOAD_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "room_allocation")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Bookable hours run 07:00-20:00 on a half-hour grid.
	v.SetDefault("ENGINE_GRID_START_MINUTES", 420)
	v.SetDefault("ENGINE_GRID_END_MINUTES", 1200)
	v.SetDefault("ENGINE_GRID_STEP_MINUTES", 30)
	v.SetDefault("ENGINE_ALLOCATION_CACHE_TTL", "5m")
	v.SetDefault("ENGINE_DEFAULT_SLOT_DURATION", 90)

	v.SetDefault("ENABLE_CHANGE_REQUESTS", true)
	v.SetDefault("REQUESTS_NOTIFY_WORKERS", 1)
	v.SetDefault("REQUESTS_NOTIFY_RETRIES", 3)
	v.SetDefault("REQUESTS_NOTIFY_RETRY_DELAY", "5s")
	v.SetDefault("REQUESTS_MAX_REASON_LENGTH", 500)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_DOWNLOAD_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
