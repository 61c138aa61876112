package runtime

import (
	"context"
	"sync"
)

// NopRuntime performs no real control-plane calls. It backs tests and
// deployments with no reachable engine; dry-run suppression happens in
// the dispatcher, not here.
type NopRuntime struct {
	mu         sync.Mutex
	terminated []string
	isolated   []string
}

func NewNopRuntime() *NopRuntime {
	return &NopRuntime{}
}

func (r *NopRuntime) Kind() Kind {
	return KindNone
}

func (r *NopRuntime) Ping(ctx context.Context) error {
	return nil
}

func (r *NopRuntime) Terminate(ctx context.Context, containerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminated = append(r.terminated, containerID)
	return nil
}

func (r *NopRuntime) IsolateNetwork(ctx context.Context, containerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isolated = append(r.isolated, containerID)
	return nil
}

func (r *NopRuntime) Terminated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.terminated...)
}

func (r *NopRuntime) Isolated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.isolated...)
}
