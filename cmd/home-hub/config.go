package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/commands"
	"github.com/diwise/home-hub/internal/pkg/application/drivers/esphome"
	"github.com/diwise/home-hub/internal/pkg/application/drivers/hue"
	"github.com/diwise/home-hub/internal/pkg/application/hub"
	"gopkg.in/yaml.v2"
)

// appConfig is the configuration file layer. Keys follow the hub options
// table; anything left out keeps its default, and environment variables and
// command line flags override values from the file.
type appConfig struct {
	DBPath string `yaml:"dbPath"`
	HubID  string `yaml:"hubId"`

	DiscoveryIntervalMs      int `yaml:"discoveryIntervalMs"`
	SubscriptionIntervalMs   int `yaml:"subscriptionIntervalMs"`
	TelemetryBatchSize       int `yaml:"telemetryBatchSize"`
	TelemetryBatchIntervalMs int `yaml:"telemetryBatchIntervalMs"`

	Command struct {
		RateLimitWindowMs        int      `yaml:"rateLimitWindowMs"`
		RateLimitMax             int      `yaml:"rateLimitMax"`
		CoalesceWindowMs         int      `yaml:"coalesceWindowMs"`
		CoalesceableCapabilities []string `yaml:"coalesceableCapabilities"`
		MaxRetries               int      `yaml:"maxRetries"`
		RetryBackoffMs           int      `yaml:"retryBackoffMs"`
		MaxRetryBackoffMs        int      `yaml:"maxRetryBackoffMs"`
	} `yaml:"command"`

	ESPHome struct {
		Port                int   `yaml:"port"`
		PingIntervalMs      int   `yaml:"pingIntervalMs"`
		Reconnect           *bool `yaml:"reconnect"`
		ReconnectIntervalMs int   `yaml:"reconnectIntervalMs"`
	} `yaml:"esphome"`

	Hue struct {
		PollIntervalMs int `yaml:"pollIntervalMs"`
	} `yaml:"hue"`
}

func loadAppConfig(r io.Reader) (appConfig, error) {
	var cfg appConfig

	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return appConfig{}, fmt.Errorf("unable to parse configuration file: %w", err)
	}

	return cfg, nil
}

func newHubConfig(flags flagMap, file appConfig, version string) hub.Config {
	cfg := hub.DefaultConfig()

	cfg.Version = version
	cfg.HomeName = flags[homeName]
	cfg.HomeTimezone = flags[homeTimezone]

	cfg.HubID = file.HubID
	if flags[hubID] != "" {
		cfg.HubID = flags[hubID]
	}

	cfg.DiscoveryInterval = msDuration(file.DiscoveryIntervalMs, cfg.DiscoveryInterval)
	cfg.SubscriptionInterval = msDuration(file.SubscriptionIntervalMs, cfg.SubscriptionInterval)

	if file.TelemetryBatchSize > 0 {
		cfg.TelemetryBatchSize = file.TelemetryBatchSize
	}
	cfg.TelemetryFlushInterval = msDuration(file.TelemetryBatchIntervalMs, cfg.TelemetryFlushInterval)

	cfg.Commands = newCommandConfig(file)

	if d, err := time.ParseDuration(flags[discoveryInterval]); err == nil {
		cfg.DiscoveryInterval = d
	}

	return cfg
}

func newCommandConfig(file appConfig) commands.Config {
	cfg := commands.DefaultConfig()

	cfg.RateLimitWindow = msDuration(file.Command.RateLimitWindowMs, cfg.RateLimitWindow)
	if file.Command.RateLimitMax > 0 {
		cfg.RateLimitMax = file.Command.RateLimitMax
	}
	cfg.CoalesceWindow = msDuration(file.Command.CoalesceWindowMs, cfg.CoalesceWindow)
	if file.Command.MaxRetries > 0 {
		cfg.MaxRetries = file.Command.MaxRetries
	}
	cfg.RetryBackoff = msDuration(file.Command.RetryBackoffMs, cfg.RetryBackoff)
	cfg.MaxRetryBackoff = msDuration(file.Command.MaxRetryBackoffMs, cfg.MaxRetryBackoff)

	if len(file.Command.CoalesceableCapabilities) > 0 {
		coalesceable := make(map[string]bool, len(file.Command.CoalesceableCapabilities))
		for _, capability := range file.Command.CoalesceableCapabilities {
			coalesceable[capability] = true
		}
		cfg.Coalesceable = coalesceable
	}

	return cfg
}

func newESPHomeConfig(flags flagMap, file appConfig) esphome.Config {
	cfg := esphome.DefaultConfig()

	if file.ESPHome.Port > 0 {
		cfg.Port = file.ESPHome.Port
	}
	cfg.PingInterval = msDuration(file.ESPHome.PingIntervalMs, cfg.PingInterval)
	if file.ESPHome.Reconnect != nil {
		cfg.Reconnect = *file.ESPHome.Reconnect
	}
	cfg.ReconnectInterval = msDuration(file.ESPHome.ReconnectIntervalMs, cfg.ReconnectInterval)

	if port, err := strconv.Atoi(flags[esphomePort]); err == nil {
		cfg.Port = port
	}

	return cfg
}

func newHueConfig(flags flagMap, file appConfig) hue.Config {
	cfg := hue.DefaultConfig()

	cfg.PollInterval = msDuration(file.Hue.PollIntervalMs, cfg.PollInterval)

	if interval, err := time.ParseDuration(flags[huePollInterval]); err == nil {
		cfg.PollInterval = interval
	}

	return cfg
}

// databasePath gives a dbPath flag or env override precedence over the
// configuration file, which in turn beats the built-in default.
func databasePath(flags flagMap, file appConfig) string {
	if path := flags[dbPath]; path != defaultFlags()[dbPath] {
		return path
	}

	if file.DBPath != "" {
		return file.DBPath
	}

	return flags[dbPath]
}

func msDuration(ms int, def time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
