// Package config provides centralized default values for the block builder.
// Every value can be overridden from the environment or a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		// Load never overrides variables already present in the environment
		if err := godotenv.Load(); err != nil {
			log.Printf("Failed to load .env: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret never logs the value
func getEnvSecret(key string) string {
	return os.Getenv(key)
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration
	CORSOrigins        []string

	// Database
	DatabaseURL              string
	DatabaseAuthToken        string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Editor
	HistoryLimit    int
	MaxSessions     int
	ContentWidth    int
	SanitizeRawHTML bool

	// TTL Configuration
	SessionTTL     time.Duration
	RenderCacheTTL time.Duration
	TokenTTL       time.Duration

	// Cleanup Intervals
	CleanupInterval        time.Duration
	CleanupVerboseReporter bool

	// Media
	MediaDir       string
	MediaURLPrefix string
	MediaMaxWidth  int

	// Auth
	JWTSecret          string
	AdminPasswordHash  string
	EditorPasswordHash string
	MaxUploadBodyMB    int
	MaxImportBodyMB    int

	// Email
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// Logging
	LogDirectory     string
	LogLevel         string
	LogJSON          bool
	LogToFile        bool
	LogChannelLevels string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{"http://localhost:4321", "http://localhost:5173"})

	// Database
	DatabaseURL = getEnvString("DATABASE_URL", "file:blockbuilder.db")
	DatabaseAuthToken = getEnvSecret("DATABASE_AUTH_TOKEN")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Editor
	HistoryLimit = getEnvInt("HISTORY_LIMIT", 100)
	MaxSessions = getEnvInt("MAX_SESSIONS", 500)
	ContentWidth = getEnvInt("CONTENT_WIDTH", 600)
	SanitizeRawHTML = getEnvBool("SANITIZE_RAW_HTML", false)

	// TTL Configuration
	SessionTTL = getEnvDuration("SESSION_TTL", 2*time.Hour)
	RenderCacheTTL = getEnvDuration("RENDER_CACHE_TTL", 10*time.Minute)
	TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	// Cleanup Intervals
	CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 5*time.Minute)
	CleanupVerboseReporter = getEnvBool("CLEANUP_VERBOSE", false)

	// Media
	MediaDir = getEnvString("MEDIA_DIR", "media")
	MediaURLPrefix = getEnvString("MEDIA_URL_PREFIX", "/media")
	MediaMaxWidth = getEnvInt("MEDIA_MAX_WIDTH", 1200)

	// Auth
	JWTSecret = getEnvSecret("JWT_SECRET")
	AdminPasswordHash = getEnvSecret("ADMIN_PASSWORD_HASH")
	EditorPasswordHash = getEnvSecret("EDITOR_PASSWORD_HASH")
	MaxUploadBodyMB = getEnvInt("MAX_UPLOAD_BODY_MB", 10)
	MaxImportBodyMB = getEnvInt("MAX_IMPORT_BODY_MB", 2)

	// Email
	ResendAPIKey = getEnvSecret("RESEND_API_KEY")
	EmailFrom = getEnvString("EMAIL_FROM", "builder@example.com")
	EmailFromName = getEnvString("EMAIL_FROM_NAME", "Block Builder")

	// Logging
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogLevel = getEnvString("LOG_LEVEL", "INFO")
	LogJSON = getEnvBool("LOG_JSON", false)
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogChannelLevels = getEnvString("LOG_CHANNEL_LEVELS", "")
}
