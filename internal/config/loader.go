package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the YAML config file, applies defaults and environment
// overrides (ENFORCER_*), and validates the result. An empty path
// yields a default configuration.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ENFORCER")
	v.AutomaticEnv()
	bindEnvVariables(v)

	if configFile != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Policies) == 0 {
		cfg.Policies = DefaultPolicies()
	}
	if cfg.ExcludedContainers == nil {
		cfg.ExcludedContainers = DefaultExcludedContainers()
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8766)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("logging.level", "info")

	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.queue_size", 64)
	v.SetDefault("dispatch.grace_period", "10s")
	v.SetDefault("dispatch.runtime_timeout", "10s")
	v.SetDefault("dispatch.webhook_timeout", "10s")
	v.SetDefault("dispatch.webhook_retry.max_attempts", 3)
	v.SetDefault("dispatch.webhook_retry.initial_interval", "500ms")
	v.SetDefault("dispatch.webhook_retry.max_interval", "10s")
	v.SetDefault("dispatch.webhook_retry.multiplier", 2.0)
	v.SetDefault("dispatch.webhook_retry.max_elapsed_time", "1m")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 50.0)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("reload.enabled", true)
	v.SetDefault("dry_run", false)
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.host", "ENFORCER_SERVER_HOST")
	v.BindEnv("server.port", "ENFORCER_SERVER_PORT")
	v.BindEnv("logging.level", "ENFORCER_LOGGING_LEVEL")
	v.BindEnv("dry_run", "ENFORCER_DRY_RUN")
	v.BindEnv("runtime.kind", "ENFORCER_RUNTIME_KIND")
	v.BindEnv("runtime.socket_path", "ENFORCER_RUNTIME_SOCKET_PATH")
	v.BindEnv("webhook.global_url", "ENFORCER_WEBHOOK_GLOBAL_URL")
}
