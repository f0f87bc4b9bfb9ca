package config

import (
	// Go Internal Packages
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"
)

var DefaultConfig = []byte(`
application: "bus-chat"

logger:
  level: "info"
  output: "stderr"

is_prod_mode: false

kafka:
  brokers:
    - "localhost:9092"
  topic: "chat-topic"
  group_id: ""
  initial_position: "latest"
  client_id: "bus-chat"
  poll_timeout: "1s"
  publish_timeout: "5s"
  dial_timeout: "5s"
  records_per_poll: 100
  idle_polls_before_ping: 5
  max_conn_retries: 3
  retry_backoff: "500ms"
  max_retry_backoff: "5s"
  auto_create_topic: true
  max_message_bytes: 1048576

chat:
  user: ""

shutdown:
  grace_period: "5s"

metrics:
  enabled: false
  addr: ":9464"
  namespace: "buschat"

mongo:
  enabled: false
  uri: "mongodb://localhost:27017"
  database: "buschat"
  collection: "sessions"

redis:
  enabled: false
  uri: "localhost:6379"
  password: ""
  list: "chat-dead-letters"
`)

type Config struct {
	Application string   `koanf:"application"`
	Logger      Logger   `koanf:"logger"`
	IsProdMode  bool     `koanf:"is_prod_mode"`
	Kafka       Kafka    `koanf:"kafka"`
	Chat        Chat     `koanf:"chat"`
	Shutdown    Shutdown `koanf:"shutdown"`
	Metrics     Metrics  `koanf:"metrics"`
	Mongo       Mongo    `koanf:"mongo"`
	Redis       Redis    `koanf:"redis"`
}

type Logger struct {
	Level  string `koanf:"level"`
	Output string `koanf:"output"`
}

type Kafka struct {
	Brokers             []string      `koanf:"brokers"`
	Topic               string        `koanf:"topic"`
	GroupID             string        `koanf:"group_id"`
	InitialPosition     string        `koanf:"initial_position"`
	ClientID            string        `koanf:"client_id"`
	PollTimeout         time.Duration `koanf:"poll_timeout"`
	PublishTimeout      time.Duration `koanf:"publish_timeout"`
	DialTimeout         time.Duration `koanf:"dial_timeout"`
	RecordsPerPoll      int           `koanf:"records_per_poll"`
	IdlePollsBeforePing int           `koanf:"idle_polls_before_ping"`
	MaxConnRetries      int           `koanf:"max_conn_retries"`
	RetryBackoff        time.Duration `koanf:"retry_backoff"`
	MaxRetryBackoff     time.Duration `koanf:"max_retry_backoff"`
	AutoCreateTopic     bool          `koanf:"auto_create_topic"`
	MaxMessageBytes     int           `koanf:"max_message_bytes"`
}

type Chat struct {
	User string `koanf:"user"`
}

type Shutdown struct {
	GracePeriod time.Duration `koanf:"grace_period"`
}

type Metrics struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr"`
	Namespace string `koanf:"namespace"`
}

type Mongo struct {
	Enabled    bool   `koanf:"enabled"`
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`
}

type Redis struct {
	Enabled  bool   `koanf:"enabled"`
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
	List     string `koanf:"list"`
}

// Position returns the parsed initial read position. Call Validate first.
func (k Kafka) Position() models.InitialPosition {
	p, _ := models.ParsePosition(k.InitialPosition)
	return p
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	for _, b := range c.Kafka.Brokers {
		if b == "" {
			ve.Add("kafka.brokers", "cannot contain empty addresses")
			break
		}
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}
	if _, err := models.ParsePosition(c.Kafka.InitialPosition); err != nil {
		ve.Add("kafka.initial_position", "must be earliest or latest")
	}
	if c.Kafka.PollTimeout <= 0 {
		ve.Add("kafka.poll_timeout", "must be positive")
	}
	if c.Kafka.PublishTimeout <= 0 {
		ve.Add("kafka.publish_timeout", "must be positive")
	}
	if c.Kafka.DialTimeout <= 0 {
		ve.Add("kafka.dial_timeout", "must be positive")
	}
	if c.Kafka.RecordsPerPoll <= 0 {
		ve.Add("kafka.records_per_poll", "must be positive")
	}
	if c.Kafka.IdlePollsBeforePing < 0 {
		ve.Add("kafka.idle_polls_before_ping", "cannot be negative")
	}
	if c.Kafka.MaxConnRetries < 0 {
		ve.Add("kafka.max_conn_retries", "cannot be negative")
	}
	if c.Kafka.RetryBackoff <= 0 || c.Kafka.MaxRetryBackoff < c.Kafka.RetryBackoff {
		ve.Add("kafka.retry_backoff", "must be positive and not above kafka.max_retry_backoff")
	}
	if c.Shutdown.GracePeriod <= 0 {
		ve.Add("shutdown.grace_period", "must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		ve.Add("metrics.addr", "cannot be empty")
	}
	if c.Mongo.Enabled && c.Mongo.URI == "" {
		ve.Add("mongo.uri", "cannot be empty")
	}
	if c.Redis.Enabled && c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty")
	}

	return ve.Err()
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "****"
	}
	return c
}
