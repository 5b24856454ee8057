package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/privasee/footprint/internal/models"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Auth          AuthConfig          `yaml:"auth"`
	Lookup        LookupConfig        `yaml:"lookup"`
	NER           NERConfig           `yaml:"ner"`
	Queue         QueueConfig         `yaml:"queue"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	CORSAllowOrigin string        `yaml:"cors_allow_origin"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	AccessTokenExpiry  time.Duration `yaml:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `yaml:"refresh_token_expiry"`
}

// LookupConfig selects where breach and social exposure data comes from.
// Mode "live" uses the configured HIBP endpoint and falls back to the
// synthetic generators on upstream failure; "synthetic" never leaves the
// process.
type LookupConfig struct {
	Mode        string        `yaml:"mode"`
	HIBPBaseURL string        `yaml:"hibp_base_url"`
	HIBPAPIKey  string        `yaml:"hibp_api_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

type NERConfig struct {
	Enabled       bool          `yaml:"enabled"`
	InferenceURL  string        `yaml:"inference_url"`
	APIToken      string        `yaml:"api_token"`
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence float64       `yaml:"min_confidence"`
}

type QueueConfig struct {
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
}

type NotificationsConfig struct {
	MinRiskLevel models.RiskLevel  `yaml:"min_risk_level"`
	Slack        SlackNotifyConfig `yaml:"slack"`
	Email        EmailNotifyConfig `yaml:"email"`
}

type SlackNotifyConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
}

type EmailNotifyConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {

		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = "change-me-in-production"

		fmt.Println("WARNING: Using default JWT secret. Set auth.jwt_secret in production!")
	}
	if c.Auth.AccessTokenExpiry == 0 {
		c.Auth.AccessTokenExpiry = 15 * time.Minute
	}
	if c.Auth.RefreshTokenExpiry == 0 {
		c.Auth.RefreshTokenExpiry = 7 * 24 * time.Hour
	}

	if c.Lookup.Mode == "" {
		c.Lookup.Mode = "synthetic"
	}
	if c.Lookup.HIBPBaseURL == "" {
		c.Lookup.HIBPBaseURL = "https://haveibeenpwned.com/api/v3"
	}
	if c.Lookup.Timeout == 0 {
		c.Lookup.Timeout = 10 * time.Second
	}

	if c.NER.Timeout == 0 {
		c.NER.Timeout = 15 * time.Second
	}
	if c.NER.MinConfidence == 0 {
		c.NER.MinConfidence = 0.5
	}

	if c.Queue.Workers == 0 {
		c.Queue.Workers = 4
	}
	if c.Queue.PollInterval == 0 {
		c.Queue.PollInterval = 2 * time.Second
	}
	if c.Queue.JobTimeout == 0 {
		c.Queue.JobTimeout = 5 * time.Minute
	}

	if c.Notifications.MinRiskLevel == "" {
		c.Notifications.MinRiskLevel = models.RiskHigh
	}
	if c.Notifications.Email.SMTPPort == 0 {
		c.Notifications.Email.SMTPPort = 587
	}
}
