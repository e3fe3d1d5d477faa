package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Neo4J     Neo4JConfig     `mapstructure:"neo4j"`
	Alchemy   AlchemyConfig   `mapstructure:"alchemy"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env         string        `mapstructure:"env"`
	LogLevel    string        `mapstructure:"log_level"`
	HTTPPort    int           `mapstructure:"http_port"`
	BatchSize   int           `mapstructure:"batch_size"`
	BatchWindow time.Duration `mapstructure:"batch_window"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL                string        `mapstructure:"url"`
	StreamName         string        `mapstructure:"stream_name"`
	SubjectPrefix      string        `mapstructure:"subject_prefix"`
	ResultSubject      string        `mapstructure:"result_subject"`
	ConsumerGroup      string        `mapstructure:"consumer_group"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts  int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay     time.Duration `mapstructure:"reconnect_delay"`
	MaxPendingMessages int           `mapstructure:"max_pending_messages"`
	Enabled            bool          `mapstructure:"enabled"`
}

// Neo4JConfig represents Neo4J configuration
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
	Enabled                      bool          `mapstructure:"enabled"`
}

// AlchemyConfig represents the upstream wallet data provider configuration
type AlchemyConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	NFTBaseURL     string        `mapstructure:"nft_base_url"`
	MaxTransfers   int           `mapstructure:"max_transfers"`
	PageSize       int           `mapstructure:"page_size"`
	NFTPageSize    int           `mapstructure:"nft_page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PageDelay      time.Duration `mapstructure:"page_delay"`
	Enabled        bool          `mapstructure:"enabled"`
}

// AnalyticsConfig represents analytics output limits and defaults
type AnalyticsConfig struct {
	TimelineGranularity string `mapstructure:"timeline_granularity"`
	MostActiveLimit     int    `mapstructure:"most_active_limit"`
	WhaleLimit          int    `mapstructure:"whale_limit"`
	CollectionLimit     int    `mapstructure:"collection_limit"`
	AcquisitionLimit    int    `mapstructure:"acquisition_limit"`
}

// HealthConfig represents health check configuration
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/wallet-activity-analyzer")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Map environment variables to nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.http_port", 8080)
	viper.SetDefault("app.batch_size", 50)
	viper.SetDefault("app.batch_window", "5s")

	// NATS defaults
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.stream_name", "SNAPSHOTS")
	viper.SetDefault("nats.subject_prefix", "wallets")
	viper.SetDefault("nats.result_subject", "wallets.analytics")
	viper.SetDefault("nats.consumer_group", "wallet-activity-analyzer")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.max_pending_messages", 10000)
	viper.SetDefault("nats.enabled", true)

	// Neo4J defaults
	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")
	viper.SetDefault("neo4j.enabled", false)

	// Alchemy defaults
	viper.SetDefault("alchemy.base_url", "https://eth-mainnet.g.alchemy.com/v2")
	viper.SetDefault("alchemy.nft_base_url", "https://eth-mainnet.g.alchemy.com/nft/v3")
	viper.SetDefault("alchemy.max_transfers", 1000)
	viper.SetDefault("alchemy.page_size", 1000)
	viper.SetDefault("alchemy.nft_page_size", 100)
	viper.SetDefault("alchemy.request_timeout", "30s")
	viper.SetDefault("alchemy.page_delay", "200ms")
	viper.SetDefault("alchemy.enabled", false)

	// Analytics defaults
	viper.SetDefault("analytics.timeline_granularity", "day")
	viper.SetDefault("analytics.most_active_limit", 10)
	viper.SetDefault("analytics.whale_limit", 10)
	viper.SetDefault("analytics.collection_limit", 10)
	viper.SetDefault("analytics.acquisition_limit", 10)

	// Health defaults
	viper.SetDefault("health.interval", "30s")
	viper.SetDefault("health.timeout", "5s")

	// Bind env for external endpoints
	viper.BindEnv("nats.url", "NATS_URL")
	viper.BindEnv("alchemy.api_key", "ALCHEMY_API_KEY")
}
