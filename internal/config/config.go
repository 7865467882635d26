package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	BindAddr string

	DBUrl  string
	DBNs   string
	DBDb   string
	DBUser string
	DBPass string

	// StorageDir is the root directory for uploaded files (avatars, task
	// submissions).
	StorageDir string

	// TokenSecret signs the auth tokens handed out by /users/token.
	TokenSecret     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Page sizes for the paginated listing endpoints.
	TaskPerPage          int
	LogPerPage           int
	QuestionnairePerPage int
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		BindAddr:             getEnv("BIND_ADDR", ":8080"),
		DBUrl:                os.Getenv("SURREAL_URL"),
		DBUser:               os.Getenv("SURREAL_USER"),
		DBPass:               os.Getenv("SURREAL_PASS"),
		DBNs:                 os.Getenv("SURREAL_NS"),
		DBDb:                 os.Getenv("SURREAL_DB"),
		StorageDir:           getEnv("STORAGE_DIR", "./data/uploads"),
		TokenSecret:          os.Getenv("TOKEN_SECRET"),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:      getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		TaskPerPage:          getInt("TASK_PER_PAGE", 10),
		LogPerPage:           getInt("LOG_PER_PAGE", 20),
		QuestionnairePerPage: getInt("QUESTIONNAIRE_PER_PAGE", 10),
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}
	if cfg.TokenSecret == "" {
		log.Fatal("Required environment variable TOKEN_SECRET is not set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer, got %q", key, v)
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("Environment variable %s must be a duration, got %q", key, v)
	}
	return d
}
