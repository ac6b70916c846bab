package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhc-hemodyn-server/internal/domain"
)

func TestNewManager_Defaults(t *testing.T) {
	clearEnvVars(t)

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10.0, cfg.Server.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Server.BurstLimit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.False(t, cfg.Mail.Enabled)
	assert.Equal(t, 587, cfg.Mail.Port)

	assert.Equal(t, domain.DefaultEngineConstants(), cfg.Engine)

	require.NoError(t, manager.Validate())
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)
	os.Setenv("HEMODYN_SERVER_PORT", "9090")
	os.Setenv("HEMODYN_LOGGING_LEVEL", "debug")
	defer clearEnvVars(t)

	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestManagerAccessors(t *testing.T) {
	clearEnvVars(t)

	manager, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, manager.GetConfig().Server, *manager.GetServerConfig())
	assert.Equal(t, manager.GetConfig().Mail, *manager.GetMailConfig())
	assert.Equal(t, manager.GetConfig().Engine, manager.EngineConstants())
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{
				Host:              "127.0.0.1",
				Port:              8080,
				RequestsPerSecond: 10,
				BurstLimit:        20,
			},
			Logging: LoggingConfig{Level: "info", Format: "json"},
			Engine:  domain.DefaultEngineConstants(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"non-positive rate limit", func(c *Config) { c.Server.RequestsPerSecond = 0 }, "requests_per_second"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"mail enabled without host", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.From = "reports@example.org"
		}, "mail host"},
		{"mail enabled without sender", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.Host = "smtp.example.org"
		}, "sender address"},
		{"non-positive engine constant", func(c *Config) { c.Engine.HufnerConstant = 0 }, "engine constants"},
		{"tolerance out of range", func(c *Config) { c.Engine.CODiscrepancyTolerance = 1.5 }, "co_discrepancy_tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			m := &Manager{config: cfg}
			err := m.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HEMODYN_SERVER_HOST",
		"HEMODYN_SERVER_PORT",
		"HEMODYN_LOGGING_LEVEL",
		"HEMODYN_LOGGING_FORMAT",
		"HEMODYN_MAIL_ENABLED",
	} {
		os.Unsetenv(key)
	}
}
