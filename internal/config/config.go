// Package config loads runner settings from config.toml and NOVA_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	envPrefix       = "NOVA"
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

type Config struct {
	UseProxy             bool     `mapstructure:"use_proxy" toml:"use_proxy"`
	MaxThreads           int      `mapstructure:"max_threads" toml:"max_threads"`
	MaxThreadsNoProxy    int      `mapstructure:"max_threads_no_proxy" toml:"max_threads_no_proxy"`
	DelayBetweenRequests int      `mapstructure:"delay_between_requests" toml:"delay_between_requests" comment:"seconds"`
	DelayStartBot        []int    `mapstructure:"delay_start_bot" toml:"delay_start_bot" comment:"[min, max] seconds"`
	DelayTask            []int    `mapstructure:"delay_task" toml:"delay_task" comment:"[min, max] seconds"`
	SkipTasks            []string `mapstructure:"skip_tasks" toml:"skip_tasks"`
	AutoTask             bool     `mapstructure:"auto_task" toml:"auto_task"`
	AutoCheckIn          bool     `mapstructure:"auto_checkin" toml:"auto_checkin"`
	TimeSleep            int      `mapstructure:"time_sleep" toml:"time_sleep" comment:"minutes between passes"`
	RefCode              string   `mapstructure:"ref_code" toml:"ref_code"`
	BaseURLs             []string `mapstructure:"base_urls" toml:"base_urls" comment:"candidate API base URLs, probed in order"`
	AccountTimeout       string   `mapstructure:"account_timeout" toml:"account_timeout"`
	BatchPause           string   `mapstructure:"batch_pause" toml:"batch_pause"`

	Files Files `mapstructure:"files" toml:"files"`
	Chain Chain `mapstructure:"chain" toml:"chain"`
	Log   Log   `mapstructure:"log" toml:"log"`
}

type Files struct {
	PrivateKeys string `mapstructure:"private_keys" toml:"private_keys"`
	Proxies     string `mapstructure:"proxies" toml:"proxies"`
	Sessions    string `mapstructure:"sessions" toml:"sessions"`
	UserAgents  string `mapstructure:"user_agents" toml:"user_agents"`
}

type Chain struct {
	RPCURL          string `mapstructure:"rpc_url" toml:"rpc_url"`
	Contract        string `mapstructure:"contract" toml:"contract"`
	Method          string `mapstructure:"method" toml:"method" comment:"e.g. checkIn() or checkIn(address)"`
	GasLimit        uint64 `mapstructure:"gas_limit" toml:"gas_limit"`
	MaxGasPriceGwei int64  `mapstructure:"max_gas_price_gwei" toml:"max_gas_price_gwei"`
	Explorer        string `mapstructure:"explorer" toml:"explorer"`
}

type Log struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

// Default is the configuration written by `nova config init`.
func Default() Config {
	return Config{
		UseProxy:             false,
		MaxThreads:           10,
		MaxThreadsNoProxy:    3,
		DelayBetweenRequests: 3,
		DelayStartBot:        []int{1, 15},
		DelayTask:            []int{3, 5},
		SkipTasks:            []string{},
		AutoTask:             true,
		AutoCheckIn:          false,
		TimeSleep:            1440,
		RefCode:              "",
		BaseURLs:             []string{},
		AccountTimeout:       "24h",
		BatchPause:           "3s",
		Files: Files{
			PrivateKeys: "privateKeys.txt",
			Proxies:     "proxy.txt",
			Sessions:    "localStorage.json",
			UserAgents:  "session_user_agents.json",
		},
		Chain: Chain{
			RPCURL:          "https://bsc-dataseed.binance.org",
			Method:          "checkIn()",
			GasLimit:        200000,
			MaxGasPriceGwei: 5,
			Explorer:        "https://bscscan.com/tx/",
		},
		Log: Log{Level: "info"},
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("use_proxy", cfg.UseProxy)
	v.SetDefault("max_threads", cfg.MaxThreads)
	v.SetDefault("max_threads_no_proxy", cfg.MaxThreadsNoProxy)
	v.SetDefault("delay_between_requests", cfg.DelayBetweenRequests)
	v.SetDefault("delay_start_bot", cfg.DelayStartBot)
	v.SetDefault("delay_task", cfg.DelayTask)
	v.SetDefault("skip_tasks", cfg.SkipTasks)
	v.SetDefault("auto_task", cfg.AutoTask)
	v.SetDefault("auto_checkin", cfg.AutoCheckIn)
	v.SetDefault("time_sleep", cfg.TimeSleep)
	v.SetDefault("ref_code", cfg.RefCode)
	v.SetDefault("base_urls", cfg.BaseURLs)
	v.SetDefault("account_timeout", cfg.AccountTimeout)
	v.SetDefault("batch_pause", cfg.BatchPause)
	v.SetDefault("files.private_keys", cfg.Files.PrivateKeys)
	v.SetDefault("files.proxies", cfg.Files.Proxies)
	v.SetDefault("files.sessions", cfg.Files.Sessions)
	v.SetDefault("files.user_agents", cfg.Files.UserAgents)
	v.SetDefault("chain.rpc_url", cfg.Chain.RPCURL)
	v.SetDefault("chain.contract", cfg.Chain.Contract)
	v.SetDefault("chain.method", cfg.Chain.Method)
	v.SetDefault("chain.gas_limit", cfg.Chain.GasLimit)
	v.SetDefault("chain.max_gas_price_gwei", cfg.Chain.MaxGasPriceGwei)
	v.SetDefault("chain.explorer", cfg.Chain.Explorer)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// Load reads config.toml from dir (the working directory when empty). A
// missing file falls back to defaults; NOVA_* variables override both.
func Load(v *viper.Viper, dir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	if dir == "" {
		dir = "."
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxThreads <= 0 || c.MaxThreadsNoProxy <= 0 {
		return errors.New("max_threads and max_threads_no_proxy must be positive")
	}
	if err := validateRange("delay_start_bot", c.DelayStartBot); err != nil {
		return err
	}
	if err := validateRange("delay_task", c.DelayTask); err != nil {
		return err
	}
	if _, err := c.AccountTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.BatchPauseDuration(); err != nil {
		return err
	}

	return nil
}

func validateRange(key string, values []int) error {
	if len(values) != 2 {
		return fmt.Errorf("%s must be [min, max]", key)
	}
	if values[0] < 0 || values[1] < values[0] {
		return fmt.Errorf("%s must satisfy 0 <= min <= max, got %v", key, values)
	}

	return nil
}

// BatchSize is the number of accounts run concurrently in one group.
func (c Config) BatchSize() int {
	if c.UseProxy {
		return c.MaxThreads
	}
	return c.MaxThreadsNoProxy
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.DelayBetweenRequests) * time.Second
}

func (c Config) PassInterval() time.Duration {
	return time.Duration(c.TimeSleep) * time.Minute
}

func (c Config) StartJitter() (time.Duration, time.Duration) {
	return secondsRange(c.DelayStartBot)
}

func (c Config) TaskJitter() (time.Duration, time.Duration) {
	return secondsRange(c.DelayTask)
}

func (c Config) AccountTimeoutDuration() (time.Duration, error) {
	return parseDuration("account_timeout", c.AccountTimeout, 24*time.Hour)
}

func (c Config) BatchPauseDuration() (time.Duration, error) {
	return parseDuration("batch_pause", c.BatchPause, 3*time.Second)
}

func secondsRange(values []int) (time.Duration, time.Duration) {
	if len(values) != 2 {
		return 0, 0
	}
	return time.Duration(values[0]) * time.Second, time.Duration(values[1]) * time.Second
}

func parseDuration(key, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return d, nil
}

// WriteDefault writes the default config to path. An existing file is left
// alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmp.Chmod(configFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}
