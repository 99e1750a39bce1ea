package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

// Penalty accrual modes. The exact accrual formula is a policy decision,
// selected here rather than hard-coded in the ledger.
const (
	PenaltyModeNone      = "none"
	PenaltyModeDailyRate = "daily_rate"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Lock      LockConfig      `mapstructure:"lock"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueSweepCron string `mapstructure:"SCHEDULER_OVERDUE_SWEEP_CRON"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	LoanCodePrefix          string `mapstructure:"BUSINESS_LOAN_CODE_PREFIX"`
	DefaultGracePeriodDays  int    `mapstructure:"BUSINESS_DEFAULT_GRACE_PERIOD_DAYS"`
	PenaltyMode             string `mapstructure:"BUSINESS_PENALTY_MODE"`
	EnforceSingleActiveLoan bool   `mapstructure:"BUSINESS_ENFORCE_SINGLE_ACTIVE_LOAN"`
}

type LockConfig struct {
	TTL            string `mapstructure:"LOCK_TTL"`
	AcquireTimeout string `mapstructure:"LOCK_ACQUIRE_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("BUSINESS_LOAN_CODE_PREFIX", "PWN")
	viper.SetDefault("BUSINESS_DEFAULT_GRACE_PERIOD_DAYS", 7)
	viper.SetDefault("BUSINESS_PENALTY_MODE", PenaltyModeNone)
	viper.SetDefault("BUSINESS_ENFORCE_SINGLE_ACTIVE_LOAN", true)
	viper.SetDefault("LOCK_TTL", "30s")
	viper.SetDefault("LOCK_ACQUIRE_TIMEOUT", "5s")
	viper.SetDefault("SCHEDULER_OVERDUE_SWEEP_CRON", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Phnom_Penh")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.DefaultGracePeriodDays < 0 {
		return fmt.Errorf("BUSINESS_DEFAULT_GRACE_PERIOD_DAYS cannot be negative")
	}

	switch c.Business.PenaltyMode {
	case PenaltyModeNone, PenaltyModeDailyRate:
	default:
		return fmt.Errorf("BUSINESS_PENALTY_MODE must be %q or %q", PenaltyModeNone, PenaltyModeDailyRate)
	}

	if _, err := time.ParseDuration(c.Lock.TTL); err != nil {
		return fmt.Errorf("LOCK_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Lock.AcquireTimeout); err != nil {
		return fmt.Errorf("LOCK_ACQUIRE_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// PenaltyPolicy returns the penalty accrual function for the configured mode.
func (c *Config) PenaltyPolicy() domain.PenaltyPolicy {
	if c.Business.PenaltyMode == PenaltyModeDailyRate {
		return domain.DailyRatePenalty
	}
	return domain.NoPenalty
}

// GetLockTTL returns the per-loan lock TTL as duration
func (c *Config) GetLockTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Lock.TTL)
	return ttl
}

// GetLockAcquireTimeout returns the lock acquisition timeout as duration
func (c *Config) GetLockAcquireTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Lock.AcquireTimeout)
	return timeout
}
