package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Default(), normalize(cfg))
	assert.Equal(t, 3, cfg.BatchSize())
	assert.Equal(t, 3*time.Second, cfg.RequestDelay())
	assert.Equal(t, 24*time.Hour, cfg.PassInterval())

	timeout, err := cfg.AccountTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, timeout)
}

func TestLoadReadsFileValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `
use_proxy = true
max_threads = 4
max_threads_no_proxy = 2
delay_task = [1, 2]
skip_tasks = ["12", "13"]
auto_checkin = true
time_sleep = 30
base_urls = ["https://api.example.test"]
batch_pause = "500ms"

[chain]
contract = "0x0000000000000000000000000000000000000001"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.True(t, cfg.UseProxy)
	assert.Equal(t, 4, cfg.BatchSize())
	assert.Equal(t, []string{"12", "13"}, cfg.SkipTasks)
	assert.True(t, cfg.AutoCheckIn)
	assert.Equal(t, 30*time.Minute, cfg.PassInterval())
	assert.Equal(t, []string{"https://api.example.test"}, cfg.BaseURLs)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", cfg.Chain.Contract)
	assert.Equal(t, "checkIn()", cfg.Chain.Method)
	assert.Equal(t, "debug", cfg.Log.Level)

	minDelay, maxDelay := cfg.TaskJitter()
	assert.Equal(t, time.Second, minDelay)
	assert.Equal(t, 2*time.Second, maxDelay)

	pause, err := cfg.BatchPauseDuration()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, pause)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"zero threads":   "max_threads = 0\n",
		"inverted range": "delay_start_bot = [10, 1]\n",
		"short range":    "delay_task = [1]\n",
		"bad timeout":    "account_timeout = \"soon\"\n",
		"malformed toml": "max_threads = [\n",
		"negative pause": "batch_pause = \"-1s\"\n",
	}

	for name, content := range tests {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

			_, err := Load(viper.New(), dir)
			require.Error(t, err)
		})
	}
}

func TestWriteDefaultRoundTripsThroughLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, WriteDefault(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), normalize(cfg))

	err = WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteDefault(path, true))
}

// normalize maps empty slices decoded as nil back to the default's empty values.
func normalize(cfg Config) Config {
	if cfg.SkipTasks == nil {
		cfg.SkipTasks = []string{}
	}
	if cfg.BaseURLs == nil {
		cfg.BaseURLs = []string{}
	}
	return cfg
}
