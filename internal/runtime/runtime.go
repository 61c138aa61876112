package runtime

import (
	"context"
)

type Kind string

const (
	KindDocker        Kind = "docker"
	KindDockerDesktop Kind = "docker_desktop"
	KindOrbStack      Kind = "orbstack"
	KindNone          Kind = "none"
)

// Runtime is the boundary to the container control plane. The engine
// depends only on these operations being idempotent and
// timeout-bounded: terminating an absent or already-stopped container
// and isolating an absent or already-isolated one both succeed.
type Runtime interface {
	Kind() Kind
	Ping(ctx context.Context) error
	Terminate(ctx context.Context, containerID string) error
	IsolateNetwork(ctx context.Context, containerID string) error
}
