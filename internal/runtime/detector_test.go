package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectExplicitKind(t *testing.T) {
	for _, kind := range []Kind{KindDocker, KindDockerDesktop, KindOrbStack} {
		rt, err := Detect(string(kind), "/tmp/docker.sock")
		require.NoError(t, err)
		assert.Equal(t, kind, rt.Kind())
	}
}

func TestDetectUnknownKind(t *testing.T) {
	_, err := Detect("podman", "")
	assert.Error(t, err)
}

func TestDetectExplicitSocketWithoutKind(t *testing.T) {
	rt, err := Detect("", "/tmp/custom.sock")
	require.NoError(t, err)
	assert.Equal(t, KindDocker, rt.Kind())
}

func TestHostFromSocket(t *testing.T) {
	assert.Equal(t, "", hostFromSocket(""))
	assert.Equal(t, "unix:///var/run/docker.sock", hostFromSocket("/var/run/docker.sock"))
}
