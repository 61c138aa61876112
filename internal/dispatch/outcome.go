package dispatch

import (
	"enforcer/internal/policy"
)

type Status string

const (
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSuppressed Status = "suppressed"
	StatusSkipped    Status = "skipped"
)

// Outcome records what happened to one matched alert's action.
type Outcome struct {
	PolicyName string            `json:"policy_name"`
	Action     policy.ActionKind `json:"action"`
	Status     Status            `json:"status"`
	Detail     string            `json:"detail,omitempty"`
	Attempts   int               `json:"attempts"`
}
