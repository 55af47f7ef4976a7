package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"event_scraper/internal/domain"
)

type Config struct {
	Database  DatabaseConfig        `yaml:"database"`
	RabbitMQ  RabbitMQConfig        `yaml:"rabbitmq"`
	Server    ServerConfig          `yaml:"server"`
	Extractor ExtractorConfig       `yaml:"extractor"`
	Scrape    ScrapeConfig          `yaml:"scrape"`
	Venues    []domain.SourceConfig `yaml:"venues"`
	LogLevel  string                `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RabbitMQConfig configures the optional new-event publisher. An empty URL
// disables publishing entirely.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	CronSecret string `yaml:"cron_secret"`
}

// ExtractorConfig configures the structured-extraction service client.
type ExtractorConfig struct {
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ScrapeConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	MaxHTMLLength   int           `yaml:"max_html_length"`
	BatchSize       int           `yaml:"batch_size"`
	BatchDelay      time.Duration `yaml:"batch_delay"`
	InsertBatchSize int           `yaml:"insert_batch_size"`
	TargetYear      int           `yaml:"target_year"`
	RunTimeout      time.Duration `yaml:"run_timeout"`
	Interval        time.Duration `yaml:"interval"`
	BotEmail        string        `yaml:"bot_email"`
	UserAgent       string        `yaml:"user_agent"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "event_scraper"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "events"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "new_events"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Extractor.BaseURL == "" {
		c.Extractor.BaseURL = "https://api.anthropic.com"
	}
	if c.Extractor.Model == "" {
		c.Extractor.Model = "claude-haiku-4-5-20251001"
	}
	if c.Extractor.MaxTokens == 0 {
		c.Extractor.MaxTokens = 4096
	}
	if c.Extractor.Timeout == 0 {
		c.Extractor.Timeout = 45 * time.Second
	}
	if c.Scrape.FetchTimeout == 0 {
		c.Scrape.FetchTimeout = 15 * time.Second
	}
	if c.Scrape.MaxHTMLLength == 0 {
		c.Scrape.MaxHTMLLength = 40_000
	}
	if c.Scrape.BatchSize == 0 {
		c.Scrape.BatchSize = 3
	}
	if c.Scrape.InsertBatchSize == 0 {
		c.Scrape.InsertBatchSize = 50
	}
	if c.Scrape.TargetYear == 0 {
		c.Scrape.TargetYear = 2026
	}
	if c.Scrape.RunTimeout == 0 {
		c.Scrape.RunTimeout = 60 * time.Second
	}
	if c.Scrape.BotEmail == "" {
		c.Scrape.BotEmail = "bot@ibiza-scraper.internal"
	}
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = "Mozilla/5.0 (compatible; Ibiza2026Bot/1.0; +https://ibiza-2026.vercel.app)"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
