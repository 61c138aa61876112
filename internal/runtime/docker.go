package runtime

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// DockerRuntime drives any Docker-API-compatible engine (Docker
// Desktop, OrbStack, plain dockerd) through the official client.
type DockerRuntime struct {
	kind Kind
	cli  *client.Client
}

// NewDockerRuntime connects to the engine at host ("unix:///..." or
// "tcp://..."); an empty host falls back to the environment
// (DOCKER_HOST et al).
func NewDockerRuntime(kind Kind, host string) (*DockerRuntime, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	} else {
		opts = append(opts, client.FromEnv)
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerRuntime{kind: kind, cli: cli}, nil
}

func (r *DockerRuntime) Kind() Kind {
	return r.kind
}

func (r *DockerRuntime) Ping(ctx context.Context) error {
	_, err := r.cli.Ping(ctx)
	return err
}

// Terminate force-kills the container. An absent or already-stopped
// container is the end state we want, so both count as success.
func (r *DockerRuntime) Terminate(ctx context.Context, containerID string) error {
	info, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	if info.State == nil || !info.State.Running {
		return nil
	}

	if err := r.cli.ContainerKill(ctx, containerID, "SIGKILL"); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to kill container %s: %w", containerID, err)
	}
	return nil
}

// IsolateNetwork disconnects the container from every attached network.
// An absent container or one with no networks left is already isolated.
func (r *DockerRuntime) IsolateNetwork(ctx context.Context, containerID string) error {
	info, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}

	if info.NetworkSettings == nil {
		return nil
	}

	for networkName := range info.NetworkSettings.Networks {
		if err := r.cli.NetworkDisconnect(ctx, networkName, containerID, true); err != nil {
			if client.IsErrNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to disconnect container %s from network %s: %w", containerID, networkName, err)
		}
	}
	return nil
}
