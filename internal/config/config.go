package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageMySQL  = "mysql"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Admin    AdminConfig
	App      AppConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig is the bootstrap operator created on first start.
type AdminConfig struct {
	Email    string
	Password string
}

type AppConfig struct {
	ListPageSize      int
	FormRedirectDelay time.Duration
	FormSessionTTL    time.Duration
	WorkerInterval    time.Duration
	DefaultLocale     string
	SeedData          bool
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "nfc_card_admin"),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
			AccessTokenExpiry:  parsePositiveDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parsePositiveDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		App: AppConfig{
			ListPageSize:      parseInt(getEnv("LIST_PAGE_SIZE", "10"), 10),
			FormRedirectDelay: parseDuration(getEnv("FORM_REDIRECT_DELAY", "1500ms"), 1500*time.Millisecond),
			FormSessionTTL:    parsePositiveDuration(getEnv("FORM_SESSION_TTL", "30m"), 30*time.Minute),
			WorkerInterval:    parsePositiveDuration(getEnv("WORKER_INTERVAL", "1m"), time.Minute),
			DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
			SeedData:          parseBool(getEnv("SEED_DATA", "true")),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration < 0 {
		fmt.Printf("Warning: Invalid duration format '%s', using %s\n", s, fallback)
		return fallback
	}
	return duration
}

// parsePositiveDuration is parseDuration for settings where zero is unusable,
// such as ticker intervals and token lifetimes.
func parsePositiveDuration(s string, fallback time.Duration) time.Duration {
	duration := parseDuration(s, fallback)
	if duration == 0 {
		fmt.Printf("Warning: Duration '%s' must be positive, using %s\n", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		fmt.Printf("Warning: Invalid number '%s', using %d\n", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
