package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Retry    Retry    `mapstructure:"retry"`
	Analysis Analysis `mapstructure:"analysis"`
	Upload   Upload   `mapstructure:"upload"`
	Search   Search   `mapstructure:"search"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Database holds database master and slave configuration.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Storage holds configuration for the object storage backend.
type Storage struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	OriginalsBucket  string `mapstructure:"originals_bucket"`
	ThumbnailsBucket string `mapstructure:"thumbnails_bucket"`
	UseSSL           bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the gallery event topic.
type Kafka struct {
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Analysis holds configuration for the external vision model API.
type Analysis struct {
	Endpoint  string `mapstructure:"endpoint"`   // chat completions URL
	APIKey    string `mapstructure:"api_key"`    // bearer token
	Model     string `mapstructure:"model"`      // model name
	MaxTokens int    `mapstructure:"max_tokens"` // response token cap
}

// Upload holds the batch pipeline tunables.
type Upload struct {
	ThumbnailMaxEdge int           `mapstructure:"thumbnail_max_edge"` // max thumbnail dimension in px
	MaxFileSize      int64         `mapstructure:"max_file_size"`      // per-file size cap in bytes
	ResetDelay       time.Duration `mapstructure:"reset_delay"`        // how long 100% stays visible
}

// Search holds the metadata search tunables.
type Search struct {
	Limit int `mapstructure:"limit"` // newest metadata rows scanned per query
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "STORAGE_ACCESS_KEY",
		"storage.secret_key":   "STORAGE_SECRET_KEY",
		"analysis.api_key":     "OPENAI_API_KEY",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

func setDefaults() {
	viper.SetDefault("analysis.endpoint", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("analysis.model", "gpt-4o-mini")
	viper.SetDefault("analysis.max_tokens", 700)
	viper.SetDefault("upload.thumbnail_max_edge", 300)
	viper.SetDefault("upload.max_file_size", 10<<20)
	viper.SetDefault("upload.reset_delay", 700*time.Millisecond)
	viper.SetDefault("search.limit", 1000)
	viper.SetDefault("storage.originals_bucket", "originals")
	viper.SetDefault("storage.thumbnails_bucket", "thumbnails")
}

// MustLoad loads the configuration from the specified directory.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
