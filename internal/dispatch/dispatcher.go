package dispatch

import (
	"context"
	"sync"
	"time"

	"enforcer/internal/alert"
	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/pkg/metrics"
)

type task struct {
	policy policy.Policy
	alert  *alert.Alert
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	GracePeriod time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     4,
		QueueSize:   64,
		GracePeriod: 10 * time.Second,
	}
}

// Dispatcher runs actions on a fixed-size worker pool behind a bounded
// queue, keeping slow runtime or webhook calls off the ingestion path.
// When the queue is full the newest action is shed with a Skipped
// outcome rather than blocking ingestion.
type Dispatcher struct {
	executor *Executor
	queue    chan task
	cfg      DispatcherConfig
	logger   logger.Logger

	wg sync.WaitGroup

	// mu orders Submit's send against shutdown's close: the queue is
	// only closed while no sender holds the lock.
	mu       sync.RWMutex
	draining bool
}

func NewDispatcher(executor *Executor, cfg DispatcherConfig, log logger.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 10 * time.Second
	}

	return &Dispatcher{
		executor: executor,
		queue:    make(chan task, cfg.QueueSize),
		cfg:      cfg,
		logger:   log,
	}
}

// Start blocks until ctx is cancelled, then drains the queue within the
// grace period and abandons whatever remains.
func (d *Dispatcher) Start(ctx context.Context) error {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	<-ctx.Done()

	d.mu.Lock()
	d.draining = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Dispatch queue drained")
	case <-time.After(d.cfg.GracePeriod):
		d.logger.Warnw("Dispatch drain grace period expired, abandoning remaining tasks",
			"queued", len(d.queue),
		)
	}
	return ctx.Err()
}

// Submit queues the action for execution. Returns a Skipped outcome
// when the pool is saturated or shutting down, nil when queued.
func (d *Dispatcher) Submit(p *policy.Policy, a *alert.Alert) *Outcome {
	d.mu.RLock()
	if d.draining {
		d.mu.RUnlock()
		return d.skip(p, "dispatcher shutting down")
	}

	select {
	case d.queue <- task{policy: *p, alert: a}:
		d.mu.RUnlock()
		metrics.SetDispatchQueueDepth(len(d.queue))
		return nil
	default:
		d.mu.RUnlock()
		return d.skip(p, "dispatch queue full")
	}
}

func (d *Dispatcher) skip(p *policy.Policy, detail string) *Outcome {
	out := Outcome{
		PolicyName: p.Name,
		Action:     p.Action,
		Status:     StatusSkipped,
		Detail:     detail,
	}
	metrics.DispatchDroppedTotal.Inc()
	metrics.IncActionExecuted(string(p.Action), string(StatusSkipped))
	d.logger.Warnw("Action skipped",
		"policy", p.Name,
		"action", p.Action,
		"detail", detail,
	)
	return &out
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for t := range d.queue {
		metrics.SetDispatchQueueDepth(len(d.queue))
		start := time.Now()

		// Tasks deliberately run on a fresh context: the ingestion
		// request that produced them has already been answered.
		out := d.executor.Execute(context.Background(), &t.policy, t.alert)

		metrics.IncActionExecuted(string(out.Action), string(out.Status))
		metrics.ObserveActionDuration(string(out.Action), time.Since(start))

		if out.Status == StatusFailed {
			d.logger.Errorw("Action failed",
				"policy", out.PolicyName,
				"action", out.Action,
				"detail", out.Detail,
				"attempts", out.Attempts,
			)
		}
	}
}
