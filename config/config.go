package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/CUknot/videocall_backend/logger"
)

// Persistence backends understood by database.Open.
const (
	PersistencePostgres = "postgres"
	PersistenceMySQL    = "mysql"
	PersistenceSQLite   = "sqlite"
	PersistenceRedis    = "redis"
	PersistenceFile     = "file"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	// DSN overrides the individual fields when set.
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ICEConfig struct {
	StunServer     string
	TurnServer     string
	TurnUsername   string
	TurnCredential string
}

// Config is the full process configuration.
type Config struct {
	Port        string
	Mode        string
	AppURL      string
	JWTSecret   string
	Persistence string
	// PersistTimeout bounds every persistence call made by the room store.
	PersistTimeout time.Duration
	RoomsFile      string
	Database       DatabaseConfig
	Redis          RedisConfig
	ICE            ICEConfig
	Log            logger.LogConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:           getString("PORT", "8080"),
		Mode:           getString("MODE", "development"),
		AppURL:         strings.TrimRight(getString("APP_URL", "http://localhost:3000"), "/"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Persistence:    strings.ToLower(getString("PERSISTENCE", PersistenceSQLite)),
		PersistTimeout: getDuration("PERSIST_TIMEOUT", 5*time.Second),
		RoomsFile:      getString("ROOMS_FILE", "data/rooms.json"),
		Database: DatabaseConfig{
			Host:     getString("DB_HOST", "localhost"),
			User:     getString("DB_USER", "postgres"),
			Password: getString("DB_PASS", "postgres"),
			Name:     getString("DB_NAME", "videocall"),
			Port:     getString("DB_PORT", "5432"),
			DSN:      os.Getenv("DSN"),
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       cast.ToInt(os.Getenv("REDIS_DB")),
		},
		ICE: ICEConfig{
			StunServer:     getString("STUN_SERVER", "stun:stun.l.google.com:19302"),
			TurnServer:     os.Getenv("TURN_SERVER"),
			TurnUsername:   os.Getenv("TURN_USERNAME"),
			TurnCredential: os.Getenv("TURN_CREDENTIAL"),
		},
		Log: logger.LogConfig{
			Level:      getString("LOG_LEVEL", "info"),
			Filename:   os.Getenv("LOG_FILE"),
			MaxSize:    getInt("LOG_MAX_SIZE", 100),
			MaxAge:     getInt("LOG_MAX_AGE", 30),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Persistence {
	case PersistencePostgres, PersistenceMySQL, PersistenceSQLite, PersistenceRedis, PersistenceFile:
	default:
		return fmt.Errorf("PERSISTENCE: unsupported backend %q", c.Persistence)
	}
	if c.JWTSecret == "" {
		if c.Mode == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production mode")
		}
		c.JWTSecret = "your-secret-key"
		logger.Warn("JWT_SECRET not set, using the development default")
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("PERSIST_TIMEOUT must be positive")
	}
	return nil
}

// JoinURL is the client-facing link for a room.
func (c *Config) JoinURL(roomID string) string {
	return c.AppURL + "/join/" + roomID
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		logger.Warn("invalid integer in environment, using default: " + key)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		logger.Warn("invalid duration in environment, using default: " + key)
		return def
	}
	return d
}
