package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, config.Validate(config.Default()))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "LOUD"

	err := config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	require.Error(t, config.Validate(cfg))
}

func TestValidateRejectsUnknownDatabaseType(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Type = "sqlite"
	require.Error(t, config.Validate(cfg))
}

func TestValidateRequiresDSNForPostgres(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Type = "postgres"
	cfg.Database.DSN = ""
	require.Error(t, config.Validate(cfg))

	cfg.Database.DSN = "postgres://localhost/netdoc"
	require.NoError(t, config.Validate(cfg))
}

func TestValidateRejectsZeroLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxLocks = 0
	require.Error(t, config.Validate(cfg))
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Server.ListenAddress, cfg.Server.ListenAddress)
}
