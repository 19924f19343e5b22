package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/codexbridge/codex-bridge/bridge"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	viper.Reset()

	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "bridge-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 3600, cfg.Bridge.Cache.TTLSeconds)
	assert.Equal(suite.T(), 100, cfg.Bridge.Cache.MaxEntries)
	assert.False(suite.T(), cfg.Bridge.Cache.SingleFlight)
	assert.Equal(suite.T(), "codex", cfg.Bridge.Exec.Binary)
	assert.Equal(suite.T(), 300, cfg.Bridge.Exec.TimeoutSeconds)
	assert.False(suite.T(), cfg.Bridge.Exec.AllowWrite)
	assert.Equal(suite.T(), internal.DefaultDenyPaths, cfg.Bridge.Validate.DenyPaths)
	assert.Equal(suite.T(), internal.DefaultIgnorePatterns, cfg.Bridge.Fingerprint.IgnorePatterns)
	assert.False(suite.T(), cfg.Bridge.History.Enabled)
	assert.True(suite.T(), cfg.Bridge.Guardrails.Enabled)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
bridge:
  cache:
    ttl_seconds: 120
    max_entries: 7
    single_flight: true
  exec:
    binary: "/usr/local/bin/codex"
    timeout_seconds: 60
    allow_write: true
  validate:
    deny_paths:
      - "/etc"
      - "/var/lib/secrets"
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 120, cfg.Bridge.Cache.TTLSeconds)
	assert.Equal(suite.T(), 7, cfg.Bridge.Cache.MaxEntries)
	assert.True(suite.T(), cfg.Bridge.Cache.SingleFlight)
	assert.Equal(suite.T(), "/usr/local/bin/codex", cfg.Bridge.Exec.Binary)
	assert.Equal(suite.T(), 60, cfg.Bridge.Exec.TimeoutSeconds)
	assert.True(suite.T(), cfg.Bridge.Exec.AllowWrite)
	assert.Equal(suite.T(), []string{"/etc", "/var/lib/secrets"}, cfg.Bridge.Validate.DenyPaths)
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsNonPositiveTTL() {
	configContent := `
bridge:
  cache:
    ttl_seconds: 0
`
	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
	assert.Contains(suite.T(), err.Error(), "ttl_seconds")
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsNegativeMaxEntries() {
	configContent := `
bridge:
  cache:
    max_entries: -5
`
	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
	assert.Contains(suite.T(), err.Error(), "max_entries")
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsNonNumericTTL() {
	configContent := `
bridge:
  cache:
    ttl_seconds: "one hour"
`
	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
bridge:
  cache:
    ttl_seconds: 60
  invalid_yaml: [unclosed bracket
`
	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}
