package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Ledger     LedgerConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Bootstrap  BootstrapConfig
	RateLimit  RateLimitConfig
	Settlement SettlementConfig
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	TimeoutSeconds int      `mapstructure:"timeoutSeconds"`
	AllowOrigins   []string `mapstructure:"allow_origins"`
	CacheTTLMillis int      `mapstructure:"cache_ttl_millis"`
}

type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// BootstrapConfig seeds the ledger on first start. Ignored once the
// ledger has been initialized.
type BootstrapConfig struct {
	OwnerAccount    string   `mapstructure:"owner_account"`
	OwnerPassword   string   `mapstructure:"owner_password"`
	Users           []string `mapstructure:"users"`
	RegistrationFee uint64   `mapstructure:"registration_fee"`
	AppointmentFee  uint64   `mapstructure:"appointment_fee"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type SettlementConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
	RetryDelaySeconds   int `mapstructure:"retry_delay_seconds"`
}

func (c ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMillis) * time.Millisecond
}

func (c SettlementConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c SettlementConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("server.cache_ttl_millis", 2000)
	viper.SetDefault("ledger.path", "data/ledger")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("ratelimit.rps", 50)
	viper.SetDefault("ratelimit.burst", 100)
	viper.SetDefault("settlement.poll_interval_seconds", 5)
	viper.SetDefault("settlement.retry_delay_seconds", 60)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
