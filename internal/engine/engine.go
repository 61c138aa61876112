package engine

import (
	"context"
	"time"

	"enforcer/internal/alert"
	"enforcer/internal/cooldown"
	"enforcer/internal/dispatch"
	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/pkg/metrics"
)

// Result classifies what the engine decided for one alert.
type Result string

const (
	ResultExcluded   Result = "excluded"
	ResultNoMatch    Result = "no_match"
	ResultSuppressed Result = "suppressed"
	ResultQueued     Result = "queued"
	ResultSkipped    Result = "skipped"
)

// Engine wires the evaluation pipeline: normalize, match against the
// current snapshot, gate on cooldown, hand off to the dispatcher.
// Evaluation is independent per alert; one alert's action failure never
// touches another's.
type Engine struct {
	store      *policy.Store
	normalizer *alert.Normalizer
	cooldowns  *cooldown.Tracker
	dispatcher *dispatch.Dispatcher
	logger     logger.Logger
	now        func() time.Time
}

func New(store *policy.Store, cooldowns *cooldown.Tracker, dispatcher *dispatch.Dispatcher, log logger.Logger) *Engine {
	return &Engine{
		store:      store,
		normalizer: alert.NewNormalizer(),
		cooldowns:  cooldowns,
		dispatcher: dispatcher,
		logger:     log,
		now:        time.Now,
	}
}

func (e *Engine) Normalize(raw alert.RawAlert) (*alert.Alert, error) {
	return e.normalizer.Normalize(raw)
}

// Process evaluates one normalized alert through the policy pipeline.
func (e *Engine) Process(ctx context.Context, a *alert.Alert) Result {
	snap := e.store.Current()

	if policy.Excluded(a, snap) {
		metrics.AlertsExcludedTotal.Inc()
		e.logger.DebugwCtx(ctx, "Container excluded from enforcement",
			"container_name", a.ContainerName,
		)
		return ResultExcluded
	}

	matched := policy.Match(a, snap)
	if matched == nil {
		e.logger.DebugwCtx(ctx, "No policy matched",
			"rule", a.Rule,
			"priority", a.Priority.String(),
		)
		return ResultNoMatch
	}

	metrics.IncAlertMatched(matched.Name)

	if !e.cooldowns.Allow(matched.Name, a.ContainerID, matched.Cooldown, e.now()) {
		metrics.IncCooldownSuppressed(matched.Name)
		metrics.IncActionExecuted(string(matched.Action), string(dispatch.StatusSuppressed))
		e.logger.DebugwCtx(ctx, "Action suppressed by cooldown",
			"policy", matched.Name,
			"container_id", a.ShortContainerID(),
		)
		return ResultSuppressed
	}

	if out := e.dispatcher.Submit(matched, a); out != nil {
		return ResultSkipped
	}
	return ResultQueued
}

// PolicyCount reports the size of the active snapshot, for the health
// surface.
func (e *Engine) PolicyCount() int {
	return len(e.store.Current().Policies)
}

// MaxCooldownAge is the sweep horizon for stale cooldown entries: the
// longest configured cooldown, with a one minute floor.
func (e *Engine) MaxCooldownAge() time.Duration {
	maxAge := time.Minute
	for _, p := range e.store.Current().Policies {
		if p.Cooldown > maxAge {
			maxAge = p.Cooldown
		}
	}
	return maxAge
}
