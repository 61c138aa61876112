package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8766},
		Dispatch: DispatchConfig{Workers: 4, QueueSize: 64},
		Policies: []PolicyConfig{
			{Name: "p1", PriorityMin: "critical", Action: "kill"},
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "port out of range",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantField: "server.port",
		},
		{
			name:      "no workers",
			mutate:    func(c *Config) { c.Dispatch.Workers = 0 },
			wantField: "dispatch.workers",
		},
		{
			name:      "zero queue",
			mutate:    func(c *Config) { c.Dispatch.QueueSize = 0 },
			wantField: "dispatch.queue_size",
		},
		{
			name:      "unnamed policy",
			mutate:    func(c *Config) { c.Policies[0].Name = "" },
			wantField: "policies[0].name",
		},
		{
			name: "duplicate policy name",
			mutate: func(c *Config) {
				c.Policies = append(c.Policies, PolicyConfig{Name: "p1", Action: "alert"})
			},
			wantField: "policies[1].name",
		},
		{
			name:      "unknown priority",
			mutate:    func(c *Config) { c.Policies[0].PriorityMin = "severe" },
			wantField: "policies[0].priority_min",
		},
		{
			name:      "unknown action",
			mutate:    func(c *Config) { c.Policies[0].Action = "nuke" },
			wantField: "policies[0].action",
		},
		{
			name: "webhook without any url",
			mutate: func(c *Config) {
				c.Policies[0].Action = "webhook"
				c.Policies[0].WebhookURL = ""
				c.Webhook.GlobalURL = ""
			},
			wantField: "policies[0].webhook_url",
		},
		{
			name:      "negative cooldown",
			mutate:    func(c *Config) { c.Policies[0].CooldownSeconds = -5 },
			wantField: "policies[0].cooldown_seconds",
		},
		{
			name:      "malformed rule pattern",
			mutate:    func(c *Config) { c.Policies[0].RulePatterns = []string{"[oops"} },
			wantField: "policies[0].rule_patterns",
		},
		{
			name:      "malformed exclusion pattern",
			mutate:    func(c *Config) { c.ExcludedContainers = []string{"[oops"} },
			wantField: "excluded_containers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			assert.Error(t, err)

			var vErr *ValidationError
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, tt.wantField, vErr.Field)
			}
		})
	}
}

func TestValidateWebhookWithGlobalURL(t *testing.T) {
	cfg := validConfig()
	cfg.Policies[0].Action = "webhook"
	cfg.Webhook.GlobalURL = "http://hooks.internal/notify"

	assert.NoError(t, Validate(cfg), "global webhook URL backs policies without their own")
}
