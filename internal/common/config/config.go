// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Settings SettingsConfig `mapstructure:"settings"`
	Mail     MailConfig     `mapstructure:"mail"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SettingsConfig controls the settings gateway cache window.
type SettingsConfig struct {
	Table    string `mapstructure:"table"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
}

// MailConfig holds the environment-level transport fallback. These values are
// only consulted when the settings store carries no usable mail configuration;
// administrator-edited settings always take precedence at runtime.
type MailConfig struct {
	Provider    string `mapstructure:"provider"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Secure      bool   `mapstructure:"secure"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	AWSRegion   string `mapstructure:"aws_region"`
	SendTimeout int    `mapstructure:"send_timeout"` // milliseconds
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
