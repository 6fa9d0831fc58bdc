package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Logging struct {
	Env       string `yaml:"env"`     // dev|stage|prod
	Service   string `yaml:"service"` // community-service
	Version   string `yaml:"version"`
	Backend   string `yaml:"backend"` // std|zap
	AddSource bool   `yaml:"addSource"`
	Debug     bool   `yaml:"debug"`
}

type Postgres struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Voice struct {
	MaxParticipants int    `yaml:"maxParticipants"` // default 10
	HeartbeatEvery  string `yaml:"heartbeatEvery"`  // default 15s
	HistoryLimit    int    `yaml:"historyLimit"`    // default 50
}

type Auth struct {
	// Фиксированный allow-list сервисных токенов (Bearer).
	ServiceTokens []string `yaml:"serviceTokens"`
}

type AI struct {
	BaseURL   string `yaml:"baseURL"`
	Token     string `yaml:"token"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

type Media struct {
	NatsURL      string `yaml:"natsURL"`
	Bucket       string `yaml:"bucket"`
	MaxImageSize int64  `yaml:"maxImageSize"` // bytes, default 5 MB
	MaxVideoSize int64  `yaml:"maxVideoSize"` // bytes, default 50 MB
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Voice    Voice    `yaml:"voice"`
	Auth     Auth     `yaml:"auth"`
	AI       AI       `yaml:"ai"`
	Media    Media    `yaml:"media"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if len(c.Auth.ServiceTokens) == 0 {
		return errors.New("auth.serviceTokens is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "community-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v1.0.1"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Voice.MaxParticipants <= 0 {
		c.Voice.MaxParticipants = 10
	}
	if c.Voice.HistoryLimit <= 0 {
		c.Voice.HistoryLimit = 50
	}
	if c.AI.Model == "" {
		c.AI.Model = "@cf/meta/llama-2-7b-chat-int8"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 512
	}
	if c.Media.NatsURL == "" {
		c.Media.NatsURL = "nats://127.0.0.1:4222"
	}
	if c.Media.Bucket == "" {
		c.Media.Bucket = "weltenbibliothek-media"
	}
	if c.Media.MaxImageSize <= 0 {
		c.Media.MaxImageSize = 5 << 20
	}
	if c.Media.MaxVideoSize <= 0 {
		c.Media.MaxVideoSize = 50 << 20
	}
	return nil
}

// HeartbeatInterval — интервал ping-ов; дефолт 15 секунд.
func (v Voice) HeartbeatInterval() time.Duration {
	if d, err := time.ParseDuration(v.HeartbeatEvery); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}
