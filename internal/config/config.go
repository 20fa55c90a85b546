package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SecurityConfig struct {
	SessionTTLSeconds   int
	AnonymousTTLSeconds int
	CSRFTTLSeconds      int
	GracePeriodDays     int
	PolicyVersion       string
	MaintenanceInterval time.Duration
}

type EmailConfig struct {
	Enabled         bool
	APIKey          string
	FromEmail       string
	FromName        string
	VerificationURL string
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "dekop"),
			Password: getEnv("DB_PASSWORD", "dekop"),
			DBName:   getEnv("DB_NAME", "dekop_compliance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			SessionTTLSeconds:   getIntEnv("SESSION_TTL_SECONDS", 86400),
			AnonymousTTLSeconds: getIntEnv("ANONYMOUS_SESSION_TTL_SECONDS", 604800),
			CSRFTTLSeconds:      getIntEnv("CSRF_TTL_SECONDS", 3600),
			GracePeriodDays:     getIntEnv("DELETION_GRACE_PERIOD_DAYS", 30),
			PolicyVersion:       getEnv("PRIVACY_POLICY_VERSION", "1.0"),
			MaintenanceInterval: getDurationEnv("MAINTENANCE_INTERVAL", time.Hour),
		},
		Email: EmailConfig{
			Enabled:         getBoolEnv("EMAIL_ENABLED", false),
			APIKey:          getEnv("RESEND_API_KEY", ""),
			FromEmail:       getEnv("EMAIL_FROM", "privacy@dekop.example"),
			FromName:        getEnv("EMAIL_FROM_NAME", "Dekop Privacy"),
			VerificationURL: getEnv("DELETION_VERIFICATION_URL", "http://localhost:3000/account/delete/confirm"),
		},
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening
// (Secure cookies, strict CORS).
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
