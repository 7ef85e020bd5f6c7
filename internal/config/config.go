package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Engagement EngagementConfig `mapstructure:"engagement"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

// AuthConfig protects the API with a static bearer key. Disabled by
// default for local honeypot deployments behind a private network.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// DetectionConfig tunes the classifier and extractor.
type DetectionConfig struct {
	ScamThreshold float64       `mapstructure:"scam_threshold"`
	CacheEnabled  bool          `mapstructure:"cache_enabled"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// MemoryConfig tunes the conversation registry.
type MemoryConfig struct {
	MaxConversations int           `mapstructure:"max_conversations"`
	Retention        time.Duration `mapstructure:"retention"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
}

// EngagementConfig holds the strategy engine thresholds.
type EngagementConfig struct {
	ExtractionThreshold float64       `mapstructure:"extraction_threshold"`
	SafetyThreshold     float64       `mapstructure:"safety_threshold"`
	MaxTurns            int           `mapstructure:"max_turns"`
	MaxPhoneNumbers     int           `mapstructure:"max_phone_numbers"`
	MaxBankAccounts     int           `mapstructure:"max_bank_accounts"`
	ConversationTimeout time.Duration `mapstructure:"conversation_timeout"`
	DefaultPersona      string        `mapstructure:"default_persona"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/lurelab")
	}

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("LURELAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "LURELAB_REDIS_ENABLED")
	v.BindEnv("redis.tls", "LURELAB_REDIS_TLS")
	v.BindEnv("redis.host", "LURELAB_REDIS_HOST")
	v.BindEnv("redis.port", "LURELAB_REDIS_PORT")
	v.BindEnv("redis.password", "LURELAB_REDIS_PASSWORD")
	v.BindEnv("database.enabled", "LURELAB_DATABASE_ENABLED")
	v.BindEnv("database.host", "LURELAB_DATABASE_HOST")
	v.BindEnv("database.port", "LURELAB_DATABASE_PORT")
	v.BindEnv("database.user", "LURELAB_DATABASE_USER")
	v.BindEnv("database.password", "LURELAB_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "LURELAB_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "LURELAB_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "LURELAB_NATS_ENABLED")
	v.BindEnv("nats.url", "LURELAB_NATS_URL")
	v.BindEnv("app.environment", "LURELAB_APP_ENVIRONMENT")
	v.BindEnv("auth.enabled", "LURELAB_AUTH_ENABLED")
	v.BindEnv("auth.api_key", "LURELAB_AUTH_API_KEY")

	// Read config file; a missing file is fine, defaults and env cover it
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "lurelab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "lurelab:")

	v.SetDefault("nats.stream_name", "LURELAB_ENGAGEMENTS")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.requests_per_hour", 3000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("detection.scam_threshold", 0.30)
	v.SetDefault("detection.cache_ttl", 15*time.Minute)

	v.SetDefault("memory.max_conversations", 1000)
	v.SetDefault("memory.retention", 120*time.Minute)
	v.SetDefault("memory.cleanup_interval", 10*time.Minute)

	v.SetDefault("engagement.extraction_threshold", 0.8)
	v.SetDefault("engagement.safety_threshold", 0.7)
	v.SetDefault("engagement.max_turns", 50)
	v.SetDefault("engagement.max_phone_numbers", 3)
	v.SetDefault("engagement.max_bank_accounts", 2)
	v.SetDefault("engagement.conversation_timeout", 60*time.Minute)
	v.SetDefault("engagement.default_persona", "ramesh")
}
