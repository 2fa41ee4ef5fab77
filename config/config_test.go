package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyproject/billy/consts"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() { os.Unsetenv(key) })
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "billy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "BILLY_PROCESSOR_NAME", "balanced")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "balanced", cfg.Processor.Name)
	assert.Equal(t, time.Duration(consts.DefaultProcessorTimeoutInSec)*time.Second, cfg.Processor.Timeout())
	assert.Equal(t, consts.DefaultPollMinAgeInSec, cfg.Poller.MinAgeInSec)
	assert.Equal(t, consts.DefaultWorkerNumber, cfg.Poller.Workers)
	assert.Equal(t, consts.DefaultPollBatchSize, cfg.Poller.BatchSize)
	assert.False(t, cfg.API.DisplayCallbackKey)
	assert.False(t, cfg.API.PrettyJSON)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
processor:
  name: balanced
  api_base: https://api.example.com/v1
  timeout_in_sec: 5
api:
  display_callback_key: true
  pretty_json: true
poller:
  interval_in_sec: 7
  min_age_in_sec: 120
  workers: 4
  batch_size: 25
audit:
  path: /var/lib/billy/audit.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "balanced", cfg.Processor.Name)
	assert.Equal(t, "https://api.example.com/v1", cfg.Processor.APIBase)
	assert.Equal(t, 5*time.Second, cfg.Processor.Timeout())
	assert.True(t, cfg.API.DisplayCallbackKey)
	assert.True(t, cfg.API.PrettyJSON)
	assert.Equal(t, 7*time.Second, cfg.Poller.Interval())
	assert.Equal(t, 120, cfg.Poller.MinAgeInSec)
	assert.Equal(t, 4, cfg.Poller.Workers)
	assert.Equal(t, 25, cfg.Poller.BatchSize)
	assert.Equal(t, "/var/lib/billy/audit.db", cfg.Audit.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
processor:
  name: balanced
  timeout_in_sec: 5
`)
	setEnv(t, "BILLY_PROCESSOR_TIMEOUT_IN_SEC", "30")
	setEnv(t, "BILLY_DISPLAY_CALLBACK_KEY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Processor.TimeoutInSec)
	assert.True(t, cfg.API.DisplayCallbackKey)
}

func TestLoadMissingProcessorName(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadNormalizesPollerBounds(t *testing.T) {
	path := writeConfigFile(t, `
processor:
  name: balanced
poller:
  workers: 0
  batch_size: -1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, consts.DefaultWorkerNumber, cfg.Poller.Workers)
	assert.Equal(t, consts.DefaultPollBatchSize, cfg.Poller.BatchSize)
}
