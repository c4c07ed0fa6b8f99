package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SheetName      string
	SheetTab       string
	CredentialsDir string
	BackupDir      string
	LogDir         string
	SourcesFile    string

	UserAgent   string
	HTTPTimeout time.Duration
	SourcePause time.Duration

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOSecure    bool

	JWTSecret string
	Port      string
}

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func LoadConfig() Config {
	// a missing .env is fine, the process environment wins anyway
	_ = godotenv.Load()

	return Config{
		SheetName:      getEnv("SHEET_NAME", "Herramientas IA"),
		SheetTab:       getEnv("SHEET_TAB", "Datos"),
		CredentialsDir: getEnv("CREDENTIALS_DIR", "."),
		BackupDir:      getEnv("BACKUP_DIR", "."),
		LogDir:         getEnv("LOG_DIR", "./logs"),
		SourcesFile:    getEnv("SOURCES_FILE", ""),

		UserAgent:   getEnv("USER_AGENT", DefaultUserAgent),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		SourcePause: getEnvDuration("SOURCE_PAUSE", 2*time.Second),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "herramientas-ia"),
		MinIOSecure:    getEnvBool("MINIO_SECURE", false),

		JWTSecret: getEnv("JWT_SECRET", ""),
		Port:      getEnv("PORT", "8000"),
	}
}

// DatabaseEnabled reports whether run archiving to Postgres is configured.
func (c Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

// MinIOEnabled reports whether backup mirroring is configured.
func (c Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
