package policy

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"

	"enforcer/pkg/errors"
	"enforcer/pkg/metrics"
)

// Snapshot is an immutable, versioned view of the active policy set
// plus the global exclusion patterns. Readers hold the whole snapshot,
// so an in-flight match never observes a partial reload.
type Snapshot struct {
	Version    int64
	Policies   []Policy
	Exclusions []string
	LoadedAt   time.Time

	exclusionGlobs []glob.Glob
}

// NewSnapshot validates the policy set fully before it can be
// published: unique names, known action kinds, non-negative cooldowns,
// well-formed glob patterns. Patterns are compiled once here so the
// matcher never pays compile cost per alert.
func NewSnapshot(policies []Policy, exclusions []string) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(policies))

	for i := range policies {
		p := &policies[i]
		if p.Name == "" {
			return nil, errors.ErrValidation.WithMessage(fmt.Sprintf("policy %d has no name", i))
		}
		if _, dup := seen[p.Name]; dup {
			return nil, errors.ErrValidation.WithMessage(fmt.Sprintf("duplicate policy name %q", p.Name))
		}
		seen[p.Name] = struct{}{}

		if !p.Action.Valid() {
			return nil, errors.ErrValidation.WithMessage(fmt.Sprintf("policy %q has unknown action %q", p.Name, p.Action))
		}
		if p.Cooldown < 0 {
			return nil, errors.ErrValidation.WithMessage(fmt.Sprintf("policy %q has negative cooldown", p.Name))
		}

		var err error
		if p.ruleGlobs, err = compilePatterns(p.RulePatterns); err != nil {
			return nil, patternError(p.Name, err)
		}
		if p.containerGlobs, err = compilePatterns(p.ContainerPatterns); err != nil {
			return nil, patternError(p.Name, err)
		}
		if p.imageGlobs, err = compilePatterns(p.ImagePatterns); err != nil {
			return nil, patternError(p.Name, err)
		}
		if p.excludeGlobs, err = compilePatterns(p.ExcludeContainers); err != nil {
			return nil, patternError(p.Name, err)
		}
	}

	exclusionGlobs, err := compilePatterns(exclusions)
	if err != nil {
		return nil, errors.ErrValidation.WithMessage("malformed exclusion pattern").WithCause(err)
	}

	return &Snapshot{
		Policies:       policies,
		Exclusions:     exclusions,
		LoadedAt:       time.Now(),
		exclusionGlobs: exclusionGlobs,
	}, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func patternError(policyName string, err error) error {
	return errors.ErrValidation.
		WithMessage(fmt.Sprintf("policy %q has malformed pattern", policyName)).
		WithCause(err)
}

// Store publishes snapshots through a single atomic pointer swap.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial == nil {
		initial = &Snapshot{LoadedAt: time.Now()}
	}
	s.publish(initial)
	return s
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace validates and publishes a new snapshot. On validation failure
// the old snapshot stays active and the error is returned.
func (s *Store) Replace(policies []Policy, exclusions []string) (*Snapshot, error) {
	snap, err := NewSnapshot(policies, exclusions)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	s.publish(snap)
	metrics.SnapshotReloadsTotal.WithLabelValues("applied").Inc()
	return snap, nil
}

func (s *Store) publish(snap *Snapshot) {
	snap.Version = s.version.Add(1)
	s.current.Store(snap)
	metrics.SetPoliciesLoaded(len(snap.Policies))
}
