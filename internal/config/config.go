package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rhc-hemodyn-server/internal/domain"
)

// Config represents the main application configuration.
type Config struct {
	Server  ServerConfig           `mapstructure:"server"`
	Logging LoggingConfig          `mapstructure:"logging"`
	Mail    MailConfig             `mapstructure:"mail"`
	Engine  domain.EngineConstants `mapstructure:"engine"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	BurstLimit        int           `mapstructure:"burst_limit"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MailConfig represents the outbound report delivery configuration. The
// engine itself never reads this; only the delivery collaborator does.
type MailConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Manager loads and validates the application configuration using Viper.
type Manager struct {
	config *Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/rhc-hemodyn-server/")

	viper.SetEnvPrefix("HEMODYN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; defaults and environment apply.
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.requests_per_second", 10.0)
	viper.SetDefault("server.burst_limit", 20)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("mail.enabled", false)
	viper.SetDefault("mail.host", "localhost")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.timeout", "10s")

	defaults := domain.DefaultEngineConstants()
	viper.SetDefault("engine.hufner_constant", defaults.HufnerConstant)
	viper.SetDefault("engine.dyne_per_wood_unit", defaults.DynePerWoodUnit)
	viper.SetDefault("engine.assumed_vo2_per_kg", defaults.AssumedVO2PerKg)
	viper.SetDefault("engine.cpo_divisor", defaults.CPODivisor)
	viper.SetDefault("engine.rvswi_factor", defaults.RVSWIFactor)
	viper.SetDefault("engine.default_svo2", defaults.DefaultMixedVenousSat)
	viper.SetDefault("engine.co_discrepancy_tolerance", defaults.CODiscrepancyTolerance)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *ServerConfig {
	return &m.config.Server
}

// GetMailConfig returns the outbound mail configuration.
func (m *Manager) GetMailConfig() *MailConfig {
	return &m.config.Mail
}

// EngineConstants returns the immutable calculation constants.
func (m *Manager) EngineConstants() domain.EngineConstants {
	return m.config.Engine
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Mail.Enabled {
		if config.Mail.Host == "" {
			return fmt.Errorf("mail host is required when mail delivery is enabled")
		}
		if config.Mail.From == "" {
			return fmt.Errorf("mail sender address is required when mail delivery is enabled")
		}
	}

	e := config.Engine
	if e.HufnerConstant <= 0 || e.DynePerWoodUnit <= 0 || e.CPODivisor <= 0 {
		return fmt.Errorf("engine constants must be positive")
	}
	if e.CODiscrepancyTolerance <= 0 || e.CODiscrepancyTolerance >= 1 {
		return fmt.Errorf("co_discrepancy_tolerance must be in (0, 1)")
	}

	return nil
}
