package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Reload    ReloadConfig    `mapstructure:"reload"`

	DryRun             bool           `mapstructure:"dry_run"`
	Policies           []PolicyConfig `mapstructure:"policies"`
	ExcludedContainers []string       `mapstructure:"excluded_containers"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RuntimeConfig struct {
	// Kind forces a runtime ("docker", "docker_desktop", "orbstack");
	// empty means auto-detect.
	Kind       string `mapstructure:"kind"`
	SocketPath string `mapstructure:"socket_path"`
}

type DispatchConfig struct {
	Workers        int           `mapstructure:"workers"`
	QueueSize      int           `mapstructure:"queue_size"`
	GracePeriod    time.Duration `mapstructure:"grace_period"`
	RuntimeTimeout time.Duration `mapstructure:"runtime_timeout"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	WebhookRetry   RetryConfig   `mapstructure:"webhook_retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type WebhookConfig struct {
	// GlobalURL backs webhook policies that carry no URL of their own.
	GlobalURL string `mapstructure:"global_url"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type ReloadConfig struct {
	// Enabled turns on fsnotify watching of the config file; a change
	// re-validates and atomically swaps the policy snapshot.
	Enabled bool `mapstructure:"enabled"`
}

type PolicyConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`

	PriorityMin       string   `mapstructure:"priority_min"`
	RulePatterns      []string `mapstructure:"rule_patterns"`
	ContainerPatterns []string `mapstructure:"container_patterns"`
	ImagePatterns     []string `mapstructure:"image_patterns"`
	ExcludeContainers []string `mapstructure:"exclude_containers"`

	Action     string `mapstructure:"action"`
	WebhookURL string `mapstructure:"webhook_url"`

	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}
