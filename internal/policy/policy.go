package policy

import (
	"time"

	"github.com/gobwas/glob"

	"enforcer/internal/alert"
)

type ActionKind string

const (
	ActionAlert      ActionKind = "alert"
	ActionKill       ActionKind = "kill"
	ActionQuarantine ActionKind = "quarantine"
	ActionWebhook    ActionKind = "webhook"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionAlert, ActionKill, ActionQuarantine, ActionWebhook:
		return true
	}
	return false
}

// Policy maps matching alerts to one response action. Policies are
// immutable once loaded into a snapshot; a reload builds a new
// snapshot, it never mutates in place.
type Policy struct {
	Name        string
	Description string

	PriorityMin       alert.Priority
	RulePatterns      []string
	ContainerPatterns []string
	ImagePatterns     []string
	ExcludeContainers []string

	Action     ActionKind
	WebhookURL string

	Cooldown time.Duration

	// Compiled by NewSnapshot; pattern order is preserved.
	ruleGlobs      []glob.Glob
	containerGlobs []glob.Glob
	imageGlobs     []glob.Glob
	excludeGlobs   []glob.Glob
}
