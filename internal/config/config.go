package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	AppEnv         string `koanf:"app_env"`
	Port           string `koanf:"port"`
	AllowedOrigins string `koanf:"allowed_origins"`

	DatabaseURL string `koanf:"database_url"`
	DBHost      string `koanf:"db_host"`
	DBPort      int    `koanf:"db_port"`
	DBUser      string `koanf:"db_user"`
	DBPass      string `koanf:"db_pass"`
	DBName      string `koanf:"db_name"`

	RedisURL string `koanf:"redis_url"`

	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`

	UploadDir      string `koanf:"upload_dir"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`

	CloudinaryURL    string `koanf:"cloudinary_url"`
	CloudinaryFolder string `koanf:"cloudinary_folder"`

	RateLimitPost    time.Duration `koanf:"rate_limit_post"`
	RateLimitComment time.Duration `koanf:"rate_limit_comment"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Load reads .env (when present), then the optional YAML file at
// CONFIG_FILE, then the process environment. Later sources win.
func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(c *Config) {
	setDefault(&c.AppEnv, "development")
	setDefault(&c.Port, "8080")
	setDefault(&c.AllowedOrigins, "http://localhost:3000")
	setDefault(&c.DBHost, "localhost")
	setDefault(&c.DBUser, "postgres")
	setDefault(&c.DBName, "blogspace")
	setDefault(&c.UploadDir, "uploads")
	setDefault(&c.CloudinaryFolder, "blogspace_avatars")
	setDefault(&c.LogLevel, "info")
	setDefault(&c.AdminEmail, "admin@blogspace.local")
	setDefault(&c.AdminPassword, "admin123")

	if c.LogFormat == "" {
		c.LogFormat = "json"
		if c.IsDevelopment() {
			c.LogFormat = "console"
		}
	}
	if c.DBPort == 0 {
		c.DBPort = 5432
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 7 * 24 * time.Hour
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 50 << 20
	}
	if c.RateLimitPost == 0 {
		c.RateLimitPost = 15 * time.Second
	}
	if c.RateLimitComment == 0 {
		c.RateLimitComment = 5 * time.Second
	}
	if c.SessionSecret == "" && c.IsDevelopment() {
		c.SessionSecret = devSessionSecret
	}
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set outside development")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_BYTES: %d", c.MaxUploadBytes)
	}
	return nil
}

func setDefault(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}
