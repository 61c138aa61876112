package policy

import (
	"github.com/gobwas/glob"

	"enforcer/internal/alert"
)

// Match evaluates an alert against the snapshot and returns the first
// policy whose structural predicate holds, or nil. Policies are visited
// in declaration order and evaluation stops at the first match. It is a
// pure function of (alert, snapshot) and safe to call concurrently.
//
// A container matching a global exclusion pattern short-circuits all
// policy evaluation.
func Match(a *alert.Alert, snap *Snapshot) *Policy {
	if Excluded(a, snap) {
		return nil
	}

	for i := range snap.Policies {
		if matches(a, &snap.Policies[i]) {
			return &snap.Policies[i]
		}
	}
	return nil
}

// Excluded reports whether the alert's container hits a global
// exclusion pattern.
func Excluded(a *alert.Alert, snap *Snapshot) bool {
	return a.ContainerName != "" && matchAny(snap.exclusionGlobs, a.ContainerName)
}

func matches(a *alert.Alert, p *Policy) bool {
	if !a.Priority.AtLeast(p.PriorityMin) {
		return false
	}

	if len(p.ruleGlobs) > 0 && !matchAny(p.ruleGlobs, a.Rule) {
		return false
	}

	if len(p.containerGlobs) > 0 && !matchAny(p.containerGlobs, a.ContainerName) {
		return false
	}

	if len(p.imageGlobs) > 0 && a.ContainerImage != "" && !matchAny(p.imageGlobs, a.ContainerImage) {
		return false
	}

	if len(p.excludeGlobs) > 0 && a.ContainerName != "" && matchAny(p.excludeGlobs, a.ContainerName) {
		return false
	}

	return true
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
