package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"enforcer/internal/alert"
	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/internal/runtime"
	"enforcer/pkg/circuitbreaker"
	"enforcer/pkg/metrics"
	"enforcer/pkg/retry"
)

type ExecutorConfig struct {
	DryRun           bool
	GlobalWebhookURL string
	RuntimeTimeout   time.Duration
	WebhookTimeout   time.Duration
	WebhookRetry     retry.Policy
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		RuntimeTimeout: 10 * time.Second,
		WebhookTimeout: 10 * time.Second,
		WebhookRetry:   retry.DefaultPolicy(),
	}
}

// Executor performs the action a matched policy prescribes. Every call
// is timeout-bounded; webhook delivery retries on a budget behind a
// circuit breaker.
type Executor struct {
	runtime    runtime.Runtime
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	logger     logger.Logger
	cfg        ExecutorConfig
}

func NewExecutor(rt runtime.Runtime, cfg ExecutorConfig, log logger.Logger) *Executor {
	if cfg.RuntimeTimeout <= 0 {
		cfg.RuntimeTimeout = 10 * time.Second
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = 10 * time.Second
	}
	if cfg.WebhookRetry.MaxAttempts <= 0 {
		cfg.WebhookRetry = retry.DefaultPolicy()
	}

	return &Executor{
		runtime:    rt,
		httpClient: &http.Client{Timeout: cfg.WebhookTimeout},
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig("webhook")),
		logger:     log,
		cfg:        cfg,
	}
}

// Execute runs the policy's action against the alert and returns the
// outcome. It never panics the worker and never blocks past its
// timeout budget.
func (e *Executor) Execute(ctx context.Context, p *policy.Policy, a *alert.Alert) Outcome {
	e.logger.WarnwCtx(ctx, "Executing policy action",
		"policy", p.Name,
		"action", p.Action,
		"container_id", a.ShortContainerID(),
		"container_name", a.ContainerName,
		"rule", a.Rule,
	)

	switch p.Action {
	case policy.ActionAlert:
		return e.executeAlert(ctx, p, a)
	case policy.ActionKill:
		return e.executeRuntime(ctx, p, a, e.runtime.Terminate, "container terminated")
	case policy.ActionQuarantine:
		return e.executeRuntime(ctx, p, a, e.runtime.IsolateNetwork, "container network isolated")
	case policy.ActionWebhook:
		return e.executeWebhook(ctx, p, a)
	default:
		return Outcome{
			PolicyName: p.Name,
			Action:     p.Action,
			Status:     StatusFailed,
			Detail:     fmt.Sprintf("unknown action kind %q", p.Action),
			Attempts:   0,
		}
	}
}

func (e *Executor) executeAlert(ctx context.Context, p *policy.Policy, a *alert.Alert) Outcome {
	e.logger.WarnwCtx(ctx, "SECURITY ALERT",
		"rule", a.Rule,
		"priority", a.Priority.String(),
		"container_id", a.ShortContainerID(),
		"container_name", a.ContainerName,
		"container_image", a.ContainerImage,
		"process", a.ProcName,
		"cmdline", a.ProcCmdline,
		"user", a.UserName,
		"connection", a.FDName,
		"tags", a.Tags,
		"policy", p.Name,
	)
	return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusSuccess, Attempts: 1}
}

func (e *Executor) executeRuntime(ctx context.Context, p *policy.Policy, a *alert.Alert, op func(context.Context, string) error, detail string) Outcome {
	if a.ContainerID == "" {
		e.logger.WarnwCtx(ctx, "No container ID in alert, cannot enforce",
			"policy", p.Name,
			"action", p.Action,
		)
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusFailed, Detail: "alert has no container id"}
	}

	if e.cfg.DryRun {
		e.logger.InfowCtx(ctx, "DRY RUN: would execute action",
			"policy", p.Name,
			"action", p.Action,
			"container_id", a.ShortContainerID(),
		)
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusSuccess, Detail: "dry-run", Attempts: 1}
	}

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.RuntimeTimeout)
	defer cancel()

	if err := op(opCtx, a.ContainerID); err != nil {
		e.logger.ErrorwCtx(ctx, "Runtime action failed",
			"policy", p.Name,
			"action", p.Action,
			"container_id", a.ShortContainerID(),
			"error", err,
		)
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusFailed, Detail: err.Error(), Attempts: 1}
	}

	e.logger.InfowCtx(ctx, "Runtime action succeeded",
		"policy", p.Name,
		"action", p.Action,
		"container_id", a.ShortContainerID(),
	)
	return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusSuccess, Detail: detail, Attempts: 1}
}

type webhookPayload struct {
	Source string        `json:"source"`
	Alert  *alert.Alert  `json:"alert"`
	Policy webhookPolicy `json:"policy"`
}

type webhookPolicy struct {
	Name   string            `json:"name"`
	Action policy.ActionKind `json:"action"`
}

func (e *Executor) executeWebhook(ctx context.Context, p *policy.Policy, a *alert.Alert) Outcome {
	url := p.WebhookURL
	if url == "" {
		url = e.cfg.GlobalWebhookURL
	}
	if url == "" {
		e.logger.WarnwCtx(ctx, "No webhook URL configured", "policy", p.Name)
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusFailed, Detail: "no webhook url configured"}
	}

	if e.cfg.DryRun {
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusSuccess, Detail: "dry-run", Attempts: 1}
	}

	body, err := json.Marshal(webhookPayload{
		Source: "ghost-edr",
		Alert:  a,
		Policy: webhookPolicy{Name: p.Name, Action: p.Action},
	})
	if err != nil {
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusFailed, Detail: err.Error()}
	}

	attempts := 0
	err = retry.Do(ctx, e.cfg.WebhookRetry, func() error {
		attempts++
		err := e.breaker.Execute(ctx, func() error {
			return e.postWebhook(ctx, url, body)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Breaker is open; waiting out the retry budget would not help.
			return retry.NewPermanentError(err)
		}
		return err
	}, func(attempt int, err error) {
		metrics.WebhookRetriesTotal.Inc()
		e.logger.WarnwCtx(ctx, "Webhook delivery failed, retrying",
			"policy", p.Name,
			"url", url,
			"attempt", attempt,
			"error", err,
		)
	})

	if err != nil {
		e.logger.ErrorwCtx(ctx, "Webhook delivery failed",
			"policy", p.Name,
			"url", url,
			"attempts", attempts,
			"error", err,
		)
		return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusFailed, Detail: err.Error(), Attempts: attempts}
	}

	e.logger.InfowCtx(ctx, "Webhook notification sent",
		"policy", p.Name,
		"url", url,
		"attempts", attempts,
	)
	return Outcome{PolicyName: p.Name, Action: p.Action, Status: StatusSuccess, Attempts: attempts}
}

func (e *Executor) postWebhook(ctx context.Context, url string, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.WebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.NewPermanentError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		// The receiver rejected the payload; retrying will not help.
		return retry.NewPermanentError(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
	return fmt.Errorf("webhook returned status %d", resp.StatusCode)
}
