package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server configuration
type ServerConfig struct {
	Port            string
	Host            string
	StaticDir       string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// MongoDB configuration
type MongoConfig struct {
	URI           string
	Database      string
	Timeout       time.Duration
	EnsureIndexes bool
}

// Redis configuration. An empty URL selects the in-memory limiter.
type RedisConfig struct {
	URL string
}

// Session token configuration
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Default administrator provisioned at startup
type AdminConfig struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// Login throttling configuration
type RateLimitConfig struct {
	LoginAttempts int
	LoginWindow   time.Duration
}

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Mongo       MongoConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
}

// Default configuration values
const (
	DefaultEnvironment     = "development"
	DefaultLogLevel        = "info"
	DefaultServerPort      = "5000"
	DefaultServerHost      = ""
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMongoURI        = "mongodb://localhost:27017/agenda-contactos"
	DefaultMongoDB         = "agenda-contactos"
	DefaultStoreTimeout    = 5 * time.Second
	DefaultJWTSecret       = "change-me-in-production"
	DefaultJWTIssuer       = "agenda"
	DefaultTokenTTL        = 24 * time.Hour
	DefaultBcryptCost      = 10
	DefaultAdminName       = "Admin"
	DefaultAdminSurname    = "Sistema"
	DefaultAdminEmail      = "admin@agenda.com"
	DefaultAdminPassword   = "admin123"
	// Login throttling defaults
	DefaultLoginAttempts = 10
	DefaultLoginWindow   = time.Minute
)

// DefaultCORSOrigins are the dev servers of the single-page client.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// New returns a new Config with default values overridden by the environment.
// A .env file in the working directory is loaded first when present.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", DefaultServerPort),
			Host:            getEnv("SERVER_HOST", DefaultServerHost),
			StaticDir:       getEnv("STATIC_DIR", ""),
			CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		},
		Mongo: MongoConfig{
			URI:           getEnv("MONGO_URI", DefaultMongoURI),
			Database:      getEnv("MONGO_DB", DefaultMongoDB),
			Timeout:       getEnvDuration("STORE_TIMEOUT", DefaultStoreTimeout),
			EnsureIndexes: getEnvBool("MONGO_ENSURE_INDEXES", true),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", DefaultJWTSecret),
			Issuer:     getEnv("JWT_ISSUER", DefaultJWTIssuer),
			TokenTTL:   getEnvDuration("TOKEN_TTL", DefaultTokenTTL),
			BcryptCost: getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", DefaultAdminName),
			Surname:  getEnv("ADMIN_SURNAME", DefaultAdminSurname),
			Email:    getEnv("ADMIN_EMAIL", DefaultAdminEmail),
			Password: getEnv("ADMIN_PASSWORD", DefaultAdminPassword),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts: getEnvInt("LOGIN_RATE_LIMIT", DefaultLoginAttempts),
			LoginWindow:   getEnvDuration("LOGIN_RATE_WINDOW", DefaultLoginWindow),
		},
	}
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
