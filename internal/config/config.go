package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB      DatabaseConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Media   MediaConfig
	Policy  DeletePolicyConfig
	CORS    CORSConfig
	LockTTL time.Duration

	// ExpiryInterval is how often the server completes expired tests on
	// its own. Zero leaves it to an external scheduler.
	ExpiryInterval time.Duration
}

// DatabaseConfig contains connection parameters. Driver is "postgres" for
// deployments and "sqlite" for single-node installs and tests.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// RedisConfig contains Redis connection parameters. When Enabled is false the
// lifecycle locks fall back to an in-process implementation.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig configures the admin password gate.
type AuthConfig struct {
	JWTSecret     string
	Password      string
	PasswordHash  string
	SessionTTL    time.Duration
	SecureCookies bool
}

// MediaConfig selects and configures the media host for feedback photos.
type MediaConfig struct {
	Driver     string // cloudinary, s3 or none
	Folder     string
	Cloudinary CloudinaryConfig
	S3         S3Config
}

// CloudinaryConfig contains Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// S3Config contains S3 (or S3-compatible) bucket configuration.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PathStyle       bool
	PublicBaseURL   string
	AccessKeyID     string // optional; default credential chain when empty
	SecretAccessKey string
}

// DeletePolicyConfig holds the delete policy name per entity.
type DeletePolicyConfig struct {
	Manufacturer string
	Product      string
	Tester       string
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read parses the environment without cross-field validation. Tools that
// only touch the database call ValidateDatabase instead of Validate.
func Read() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "postgres"),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Path:     getEnv("DB_PATH", "./panel.db"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Auth
	cfg.Auth = AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", ""),
		Password:      getEnv("ADMIN_PASSWORD", ""),
		PasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		SecureCookies: cfg.Env == "production",
	}

	// Media
	cfg.Media = MediaConfig{
		Driver: getEnv("MEDIA_DRIVER", "none"),
		Folder: getEnv("MEDIA_FOLDER", "feedback"),
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PathStyle:       getEnvBool("S3_PATH_STYLE", false),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}

	// Delete policies
	cfg.Policy = DeletePolicyConfig{
		Manufacturer: getEnv("DELETE_POLICY_MANUFACTURER", "strict"),
		Product:      getEnv("DELETE_POLICY_PRODUCT", "cascade"),
		Tester:       getEnv("DELETE_POLICY_TESTER", "cascade"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	// Durations
	var err error
	if cfg.Auth.SessionTTL, err = parseDurationEnv("SESSION_TTL", "168h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.LockTTL, err = parseDurationEnv("LOCK_TTL", "10s"); err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	if cfg.ExpiryInterval, err = parseDurationEnv("EXPIRY_INTERVAL", "0"); err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_INTERVAL: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements with concise, helpful messages.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	switch c.Media.Driver {
	case "none":
	case "cloudinary":
		if c.Media.Cloudinary.CloudName == "" || c.Media.Cloudinary.APIKey == "" || c.Media.Cloudinary.APISecret == "" {
			return errors.New("cloudinary media driver requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	case "s3":
		if c.Media.S3.Bucket == "" {
			return errors.New("s3 media driver requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_DRIVER %q", c.Media.Driver)
	}

	for key, v := range map[string]string{
		"DELETE_POLICY_MANUFACTURER": c.Policy.Manufacturer,
		"DELETE_POLICY_PRODUCT":      c.Policy.Product,
		"DELETE_POLICY_TESTER":       c.Policy.Tester,
	} {
		if v != "strict" && v != "cascade" {
			return fmt.Errorf("%s must be 'strict' or 'cascade', got %q", key, v)
		}
	}
	return nil
}

// ValidateDatabase checks only the database settings.
func (c *Config) ValidateDatabase() error {
	switch c.DB.Driver {
	case "postgres":
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
			return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case "sqlite":
		if c.DB.Path == "" {
			return errors.New("DB_PATH must be set when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
