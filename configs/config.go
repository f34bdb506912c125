package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
	Discord    DiscordConfig
	Cache      CacheConfig
	Migrations MigrationsConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// JWTConfig configures verification of inbound bearer tokens. Tokens are
// issued elsewhere; this service only checks them.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// RateLimitConfig bounds how many pings one user may send per window.
type RateLimitConfig struct {
	PingsPerWindow  int
	BurstMultiplier float64
	Window          time.Duration
	KeyPrefix       string
}

type DiscordConfig struct {
	BotToken                   string
	GuildID                    string
	APIBaseURL                 string
	ChannelCacheTTL            time.Duration
	ChannelNameCacheTTL        time.Duration
	ChannelNameCacheMaxEntries int
	RequestTimeout             time.Duration
	FetchTimeout               time.Duration
}

// CacheConfig controls the Redis-backed template cache.
type CacheConfig struct {
	KeyPrefix   string
	TemplateTTL time.Duration
}

type MigrationsConfig struct {
	Path string
}

// Load reads configuration from the environment, after applying a .env file
// when one exists. Every missing required variable is reported in the error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []error
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, fmt.Errorf("required environment variable %s is not set", key))
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
			CORSOrigins:  getListEnv("CORS_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "pings"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:   required("JWT_SECRET"),
			Issuer:   getEnv("JWT_ISSUER", ""),
			Audience: getEnv("JWT_AUDIENCE", ""),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			PingsPerWindow:  getIntEnv("RATE_LIMIT_PINGS", 10),
			BurstMultiplier: getFloatEnv("RATE_LIMIT_BURST", 1.0),
			Window:          getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			KeyPrefix:       getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:pings"),
		},
		Discord: DiscordConfig{
			BotToken:                   required("DISCORD_BOT_TOKEN"),
			GuildID:                    getEnv("DISCORD_GUILD_ID", ""),
			APIBaseURL:                 getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
			ChannelCacheTTL:            getDurationEnv("DISCORD_CHANNEL_CACHE_TTL", 30*time.Minute),
			ChannelNameCacheTTL:        getDurationEnv("DISCORD_CHANNEL_NAME_CACHE_TTL", 30*time.Minute),
			ChannelNameCacheMaxEntries: getIntEnv("DISCORD_CHANNEL_NAME_CACHE_MAX_ENTRIES", 1000),
			RequestTimeout:             getDurationEnv("DISCORD_REQUEST_TIMEOUT", 10*time.Second),
			FetchTimeout:               getDurationEnv("DISCORD_FETCH_TIMEOUT", 15*time.Second),
		},
		Cache: CacheConfig{
			KeyPrefix:   getEnv("CACHE_KEY_PREFIX", "pings"),
			TemplateTTL: getDurationEnv("CACHE_TEMPLATE_TTL", 5*time.Minute),
		},
		Migrations: MigrationsConfig{
			Path: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
	}

	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

// RedisAddr returns host:port for the Redis client.
func (c *RedisConfig) RedisAddr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
