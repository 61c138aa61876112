package config

import (
	"time"

	"enforcer/internal/alert"
	"enforcer/internal/policy"
)

// Policies converts the declarative policy list into the engine model.
// Assumes Validate has passed; unset fields take their defaults
// (warning floor, alert action).
func (c *Config) ToPolicies() []policy.Policy {
	policies := make([]policy.Policy, 0, len(c.Policies))

	for _, pc := range c.Policies {
		priorityMin := alert.PriorityWarning
		if pc.PriorityMin != "" {
			if p, err := alert.ParsePriority(pc.PriorityMin); err == nil {
				priorityMin = p
			}
		}

		action := policy.ActionAlert
		if pc.Action != "" {
			action = policy.ActionKind(pc.Action)
		}

		policies = append(policies, policy.Policy{
			Name:              pc.Name,
			Description:       pc.Description,
			PriorityMin:       priorityMin,
			RulePatterns:      pc.RulePatterns,
			ContainerPatterns: pc.ContainerPatterns,
			ImagePatterns:     pc.ImagePatterns,
			ExcludeContainers: pc.ExcludeContainers,
			Action:            action,
			WebhookURL:        pc.WebhookURL,
			Cooldown:          time.Duration(pc.CooldownSeconds) * time.Second,
		})
	}

	return policies
}
