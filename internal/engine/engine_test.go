package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcer/internal/alert"
	"enforcer/internal/cooldown"
	"enforcer/internal/dispatch"
	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/internal/runtime"
)

func newTestEngine(t *testing.T, policies []policy.Policy, exclusions []string, queueSize int) (*Engine, *runtime.NopRuntime) {
	t.Helper()

	snap, err := policy.NewSnapshot(policies, exclusions)
	require.NoError(t, err)
	store := policy.NewStore(snap)

	rt := runtime.NewNopRuntime()
	executor := dispatch.NewExecutor(rt, dispatch.DefaultExecutorConfig(), logger.NopLogger())
	dispatcher := dispatch.NewDispatcher(executor, dispatch.DispatcherConfig{
		Workers:     1,
		QueueSize:   queueSize,
		GracePeriod: time.Second,
	}, logger.NopLogger())

	return New(store, cooldown.NewTracker(), dispatcher, logger.NopLogger()), rt
}

func TestProcessZeroCooldownFiresEveryTime(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{
			Name:         "kill-shells",
			PriorityMin:  alert.PriorityCritical,
			RulePatterns: []string{"Ghost EDR - Reverse Shell*"},
			Action:       policy.ActionKill,
			Cooldown:     0,
		},
	}, nil, 16)

	a := &alert.Alert{
		Rule:          "Ghost EDR - Reverse Shell Detected",
		Priority:      alert.PriorityCritical,
		ContainerID:   "victim1",
		ContainerName: "victim1",
	}

	assert.Equal(t, ResultQueued, e.Process(context.Background(), a))
	assert.Equal(t, ResultQueued, e.Process(context.Background(), a), "zero cooldown never suppresses")
}

func TestProcessCooldownSuppressesRepeat(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{
			Name:         "quarantine-miners",
			PriorityMin:  alert.PriorityError,
			RulePatterns: []string{"Ghost EDR - Mining Pool*"},
			Action:       policy.ActionQuarantine,
			Cooldown:     30 * time.Second,
		},
	}, nil, 16)

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	now := base
	e.now = func() time.Time { return now }

	a := &alert.Alert{
		Rule:          "Ghost EDR - Mining Pool Connection",
		Priority:      alert.PriorityError,
		ContainerID:   "victim2",
		ContainerName: "victim2",
	}

	assert.Equal(t, ResultQueued, e.Process(context.Background(), a))

	now = base.Add(10 * time.Second)
	assert.Equal(t, ResultSuppressed, e.Process(context.Background(), a))

	now = base.Add(31 * time.Second)
	assert.Equal(t, ResultQueued, e.Process(context.Background(), a))
}

func TestProcessCooldownIsPerContainer(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{
			Name:        "noisy",
			PriorityMin: alert.PriorityWarning,
			Action:      policy.ActionAlert,
			Cooldown:    time.Minute,
		},
	}, nil, 16)

	mk := func(id string) *alert.Alert {
		return &alert.Alert{Rule: "Some Rule", Priority: alert.PriorityWarning, ContainerID: id, ContainerName: id}
	}

	assert.Equal(t, ResultQueued, e.Process(context.Background(), mk("c1")))
	assert.Equal(t, ResultSuppressed, e.Process(context.Background(), mk("c1")))
	assert.Equal(t, ResultQueued, e.Process(context.Background(), mk("c2")), "distinct container has its own window")
}

func TestProcessNoMatch(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{Name: "critical-only", PriorityMin: alert.PriorityCritical, Action: policy.ActionKill},
	}, nil, 16)

	a := &alert.Alert{Rule: "Some Rule", Priority: alert.PriorityWarning, ContainerName: "c1"}
	assert.Equal(t, ResultNoMatch, e.Process(context.Background(), a))
}

func TestProcessExcludedContainer(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{Name: "everything", PriorityMin: alert.PriorityDebug, Action: policy.ActionKill},
	}, []string{"ghost-mole"}, 16)

	a := &alert.Alert{
		Rule:          "Ghost EDR - Reverse Shell Detected",
		Priority:      alert.PriorityEmergency,
		ContainerID:   "mole-id",
		ContainerName: "ghost-mole",
	}
	assert.Equal(t, ResultExcluded, e.Process(context.Background(), a), "exclusion wins at any priority")
}

func TestProcessSaturatedQueueSkips(t *testing.T) {
	// Workers never started, queue of one: the second alert is shed.
	e, _ := newTestEngine(t, []policy.Policy{
		{Name: "p", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert},
	}, nil, 1)

	a := &alert.Alert{Rule: "Some Rule", Priority: alert.PriorityWarning, ContainerName: "c1"}
	assert.Equal(t, ResultQueued, e.Process(context.Background(), a))
	assert.Equal(t, ResultSkipped, e.Process(context.Background(), a))
}

func TestMaxCooldownAge(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{Name: "short", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert, Cooldown: 30 * time.Second},
		{Name: "long", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert, Cooldown: 5 * time.Minute},
	}, nil, 16)

	assert.Equal(t, 5*time.Minute, e.MaxCooldownAge())

	eFloor, _ := newTestEngine(t, []policy.Policy{
		{Name: "p", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert, Cooldown: time.Second},
	}, nil, 16)
	assert.Equal(t, time.Minute, eFloor.MaxCooldownAge(), "sweep horizon keeps a one minute floor")
}

func TestPolicyCountTracksSnapshot(t *testing.T) {
	e, _ := newTestEngine(t, []policy.Policy{
		{Name: "a", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert},
		{Name: "b", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert},
	}, nil, 16)

	assert.Equal(t, 2, e.PolicyCount())

	_, err := e.store.Replace([]policy.Policy{
		{Name: "only", PriorityMin: alert.PriorityWarning, Action: policy.ActionAlert},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, e.PolicyCount())
}
