package runtime

import (
	"fmt"
	"os"
	"path/filepath"
)

// Detect picks a container runtime. An explicit preferred kind wins;
// otherwise known socket locations are probed, OrbStack first since its
// socket is the more specific signal. socketPath overrides the probe
// result when set.
func Detect(preferred string, socketPath string) (Runtime, error) {
	if preferred != "" {
		kind := Kind(preferred)
		switch kind {
		case KindOrbStack, KindDockerDesktop, KindDocker:
			return NewDockerRuntime(kind, hostFromSocket(socketPath))
		default:
			return nil, fmt.Errorf("unknown runtime kind %q", preferred)
		}
	}

	if socketPath != "" {
		return NewDockerRuntime(KindDocker, hostFromSocket(socketPath))
	}

	if sock, ok := probeSockets(orbstackSockets()); ok {
		return NewDockerRuntime(KindOrbStack, hostFromSocket(sock))
	}

	if sock, ok := probeSockets(dockerDesktopSockets()); ok {
		return NewDockerRuntime(KindDockerDesktop, hostFromSocket(sock))
	}

	if os.Getenv("DOCKER_HOST") != "" {
		return NewDockerRuntime(KindDocker, "")
	}

	// No socket found; let the client fall back to its defaults so a
	// daemon that appears later still works.
	return NewDockerRuntime(KindDocker, "")
}

func orbstackSockets() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".orbstack", "run", "docker.sock")}
}

func dockerDesktopSockets() []string {
	sockets := []string{"/var/run/docker.sock"}
	home, err := os.UserHomeDir()
	if err != nil {
		return sockets
	}
	return append(sockets,
		filepath.Join(home, ".docker", "run", "docker.sock"),
		filepath.Join(home, "Library", "Containers", "com.docker.docker", "Data", "docker.sock"),
	)
}

func probeSockets(paths []string) (string, bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func hostFromSocket(socketPath string) string {
	if socketPath == "" {
		return ""
	}
	return "unix://" + socketPath
}
