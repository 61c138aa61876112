package config

import (
	"fmt"

	"github.com/gobwas/glob"

	"enforcer/internal/alert"
	"enforcer/internal/policy"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func Validate(cfg *Config) error {
	if err := validateServer(cfg.Server); err != nil {
		return err
	}

	if err := validateDispatch(cfg.Dispatch); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(cfg.Policies))
	for i, pc := range cfg.Policies {
		if err := validatePolicy(i, pc, cfg.Webhook.GlobalURL, seen); err != nil {
			return err
		}
	}

	if err := validatePatterns("excluded_containers", cfg.ExcludedContainers); err != nil {
		return err
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}
	return nil
}

func validateDispatch(cfg DispatchConfig) error {
	if cfg.Workers < 1 {
		return &ValidationError{
			Field:   "dispatch.workers",
			Message: "at least one worker is required",
		}
	}
	if cfg.QueueSize < 1 {
		return &ValidationError{
			Field:   "dispatch.queue_size",
			Message: "queue size must be positive",
		}
	}
	return nil
}

func validatePolicy(index int, pc PolicyConfig, globalWebhookURL string, seen map[string]struct{}) error {
	field := fmt.Sprintf("policies[%d]", index)

	if pc.Name == "" {
		return &ValidationError{Field: field + ".name", Message: "policy name is required"}
	}
	if _, dup := seen[pc.Name]; dup {
		return &ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("duplicate policy name %q", pc.Name),
		}
	}
	seen[pc.Name] = struct{}{}

	if pc.PriorityMin != "" {
		if _, err := alert.ParsePriority(pc.PriorityMin); err != nil {
			return &ValidationError{
				Field:   field + ".priority_min",
				Message: err.Error(),
			}
		}
	}

	if pc.Action != "" && !policy.ActionKind(pc.Action).Valid() {
		return &ValidationError{
			Field:   field + ".action",
			Message: fmt.Sprintf("unknown action %q", pc.Action),
		}
	}

	if policy.ActionKind(pc.Action) == policy.ActionWebhook && pc.WebhookURL == "" && globalWebhookURL == "" {
		return &ValidationError{
			Field:   field + ".webhook_url",
			Message: "webhook action needs a webhook_url or a global webhook.global_url",
		}
	}

	if pc.CooldownSeconds < 0 {
		return &ValidationError{
			Field:   field + ".cooldown_seconds",
			Message: "cooldown must be non-negative",
		}
	}

	for _, patterns := range []struct {
		name  string
		value []string
	}{
		{field + ".rule_patterns", pc.RulePatterns},
		{field + ".container_patterns", pc.ContainerPatterns},
		{field + ".image_patterns", pc.ImagePatterns},
		{field + ".exclude_containers", pc.ExcludeContainers},
	} {
		if err := validatePatterns(patterns.name, patterns.value); err != nil {
			return err
		}
	}

	return nil
}

func validatePatterns(field string, patterns []string) error {
	for _, pattern := range patterns {
		if _, err := glob.Compile(pattern); err != nil {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("malformed pattern %q: %v", pattern, err),
			}
		}
	}
	return nil
}
