package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"env"` // ENV: production, development, etc.
	Port        string `yaml:"port"`
	Host        string `yaml:"host"` // Public base URL of this API, e.g. https://api.researchhive.org

	StorageDriver string `yaml:"storage_driver"` // mongo (default) or memory
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	RedisURI      string `yaml:"redis_uri"`
	PostgresURI   string `yaml:"postgres_uri"` // optional, enables login device tracking

	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`

	CloudinaryName      string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret"`
	CloudinaryFolder    string `yaml:"cloudinary_folder"`

	FrontendURL    string   `yaml:"frontend_url"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	TrustProxy     bool     `yaml:"trust_proxy"`

	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from the environment. When path is non-empty the YAML file is
// applied on top; keys present in the file win over the environment.
func Load(path string) (*Config, error) {
	cfg := fromEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		Environment:         getEnv("ENV", "development"),
		Port:                getEnv("PORT", "5000"),
		Host:                getEnv("HOST", "http://localhost:5000"),
		StorageDriver:       getEnv("STORAGE_DRIVER", "mongo"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/researchhive")),
		MongoDatabase:       getEnv("MONGO_DATABASE", ""),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		SessionTTL:          getDuration("SESSION_TTL", 7*24*time.Hour),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:         getInt("MAX_UPLOAD_MB", 32),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "researchhive"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins:      allowedOrigins,
		TrustProxy:          getBool("TRUST_PROXY", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want mongo or memory)", c.StorageDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// MaxUploadBytes is the multipart limit for repository uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
