package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env when GO_ENV is unset or development.
// A missing .env file is not an error; the process environment is used as is.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

type Environment struct {
	GO_ENV string
	PORT   int

	// Persistence
	STORE_BACKEND string
	SQLITE_PATH   string
	DB_USER_NAME  string
	DB_PASSWORD   string
	DB_NAME       string
	DB_HOST       string
	DB_PORT       string
	DB_SSL_MODE   string
	REDIS_URL     string

	// DigitalOcean Spaces
	DO_SPACES_ACCESS_KEY string
	DO_SPACES_SECRET_KEY string
	DO_SPACES_BUCKET     string
	DO_SPACES_REGION     string
	DO_SPACES_ENDPOINT   string
	DO_SPACES_PREFIX     string

	// Sessions
	JWT_SECRET  string
	JWT_ISSUER  string
	SESSION_TTL time.Duration

	// Notify relay
	TELEGRAM_BOT_TOKEN string
	TELEGRAM_CHAT_ID   string
	TELEGRAM_API_URL   string

	// HTTP surface
	ALLOWED_ORIGINS     string
	VERCEL_URL          string
	RATE_LIMIT_REQUESTS int

	// Seeded admin credential
	ADMIN_USERNAME        string
	ADMIN_PASSWORD        string
	HASH_SEEDED_PASSWORDS bool

	CRON_ENABLED bool
}

// Get reads the environment, applying defaults for anything unset
func Get() (*Environment, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	sessionTTL, err := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if err != nil || sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if err != nil {
		rateLimit = 100
	}

	env := &Environment{
		GO_ENV: os.Getenv("GO_ENV"),
		PORT:   port,

		STORE_BACKEND: strings.ToLower(getEnvOrDefault("STORE_BACKEND", "sqlite")),
		SQLITE_PATH:   getEnvOrDefault("SQLITE_PATH", "catalogue.db"),
		DB_USER_NAME:  os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:   os.Getenv("DB_PASSWORD"),
		DB_NAME:       os.Getenv("DB_NAME"),
		DB_HOST:       getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:       getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:   getEnvOrDefault("DB_SSL_MODE", "disable"),
		REDIS_URL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		DO_SPACES_ACCESS_KEY: os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY: os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:     os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:     os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:   os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_PREFIX:     getEnvOrDefault("DO_SPACES_PREFIX", "catalogue/"),

		JWT_SECRET:  os.Getenv("JWT_SECRET"),
		JWT_ISSUER:  getEnvOrDefault("JWT_ISSUER", "iceducation-api"),
		SESSION_TTL: sessionTTL,

		TELEGRAM_BOT_TOKEN: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TELEGRAM_CHAT_ID:   os.Getenv("TELEGRAM_CHAT_ID"),
		TELEGRAM_API_URL:   getEnvOrDefault("TELEGRAM_API_URL", "https://api.telegram.org"),

		ALLOWED_ORIGINS:     os.Getenv("ALLOWED_ORIGINS"),
		VERCEL_URL:          os.Getenv("VERCEL_URL"),
		RATE_LIMIT_REQUESTS: rateLimit,

		ADMIN_USERNAME:        getEnvOrDefault("ADMIN_USERNAME", "admin"),
		ADMIN_PASSWORD:        getEnvOrDefault("ADMIN_PASSWORD", "admin123"),
		HASH_SEEDED_PASSWORDS: os.Getenv("HASH_SEEDED_PASSWORDS") == "true",

		// enabled unless explicitly switched off
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
	}

	if env.IsProduction() && env.JWT_SECRET == "" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	return env, nil
}

// IsProduction reports whether GO_ENV is production
func (e *Environment) IsProduction() bool {
	return e.GO_ENV == "production"
}

// Origins returns the CORS allow-list: the fixed front-end origins, the
// Vercel preview host when present, and anything in ALLOWED_ORIGINS.
func (e *Environment) Origins() []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:5001",
		"https://pr-study.com",
	}
	if e.VERCEL_URL != "" {
		origins = append(origins, "https://"+e.VERCEL_URL)
	}
	for _, o := range strings.Split(e.ALLOWED_ORIGINS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
