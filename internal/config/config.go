package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only accepted when IDESK_ENV=development.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabaseDSN    string        `yaml:"database_dsn"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	PublicURL      string        `yaml:"public_url"`
	LogLevel       string        `yaml:"log_level"`
	Workers        int           `yaml:"workers"`
	Redis          RedisConfig   `yaml:"redis"`
	OAuth          OAuthConfig   `yaml:"oauth"`
	Mail           MailConfig    `yaml:"mail"`
}

// RedisConfig points at the session revocation store. An empty Addr keeps
// revocations in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OAuthConfig enables redirect sign-in against an external identity provider
// when ClientID is set.
type OAuthConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"userinfo_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

func (o OAuthConfig) Enabled() bool { return o.ClientID != "" }

type MailConfig struct {
	Provider string `yaml:"provider"`
	Region   string `yaml:"region"`
	From     string `yaml:"from"`
}

const (
	MailProviderLog = "log"
	MailProviderSES = "ses"
)

// LoadConfig builds the configuration from IDESK_* environment variables (a
// .env file in the working directory is read first when present) and then
// overlays the YAML file at path, if any.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Addr:           getEnv("IDESK_ADDR", ":8080"),
		JWTSecret:      getEnv("IDESK_JWT_SECRET", DefaultJWTSecret),
		APITimeout:     getEnvDuration("IDESK_TIMEOUT", 15*time.Second),
		DatabaseDSN:    getEnv("IDESK_DATABASE_DSN", "interviewdesk.db"),
		TokenDuration:  getEnvDuration("IDESK_TOKEN_DURATION", 1*time.Hour),
		MigrateOnStart: getEnvBool("IDESK_MIGRATE_ON_START", true),
		PublicURL:      getEnv("IDESK_PUBLIC_URL", "http://localhost:8080"),
		LogLevel:       getEnv("IDESK_LOG_LEVEL", "info"),
		Workers:        getEnvInt("IDESK_WORKERS", 2),
		Redis: RedisConfig{
			Addr:     getEnv("IDESK_REDIS_ADDR", ""),
			Password: getEnv("IDESK_REDIS_PASSWORD", ""),
		},
		OAuth: OAuthConfig{
			ClientID:     getEnv("IDESK_OAUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("IDESK_OAUTH_CLIENT_SECRET", ""),
			AuthURL:      getEnv("IDESK_OAUTH_AUTH_URL", ""),
			TokenURL:     getEnv("IDESK_OAUTH_TOKEN_URL", ""),
			UserInfoURL:  getEnv("IDESK_OAUTH_USERINFO_URL", ""),
			RedirectURL:  getEnv("IDESK_OAUTH_REDIRECT_URL", ""),
		},
		Mail: MailConfig{
			Provider: getEnv("IDESK_MAIL_PROVIDER", MailProviderLog),
			Region:   getEnv("IDESK_MAIL_REGION", ""),
			From:     getEnv("IDESK_MAIL_FROM", "no-reply@localhost"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects unusable settings and fills defaults for optional ones.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == DefaultJWTSecret && os.Getenv("IDESK_ENV") != "development" {
		return errors.New("insecure default jwt_secret; set IDESK_JWT_SECRET or IDESK_ENV=development")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.APITimeout)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive, got %v", c.TokenDuration)
	}
	if c.DatabaseDSN == "" {
		return errors.New("database_dsn is required")
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	switch c.Mail.Provider {
	case "":
		c.Mail.Provider = MailProviderLog
	case MailProviderLog:
	case MailProviderSES:
		if c.Mail.Region == "" {
			return errors.New("mail.region is required for the ses provider")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}

	if c.OAuth.Enabled() {
		if c.OAuth.AuthURL == "" || c.OAuth.TokenURL == "" || c.OAuth.UserInfoURL == "" {
			return errors.New("oauth requires auth_url, token_url and userinfo_url")
		}
		if len(c.OAuth.Scopes) == 0 {
			c.OAuth.Scopes = []string{"openid", "email", "profile"}
		}
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func getEnvInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}
