package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcer/pkg/errors"
)

func TestNormalizeFullPayload(t *testing.T) {
	n := NewNormalizer()

	a, err := n.Normalize(RawAlert{
		UUID:     "abc-123",
		Rule:     "Ghost EDR - Reverse Shell Detected",
		Priority: "Critical",
		Output:   "Reverse shell spawned",
		Time:     "2026-08-20T10:30:00.123456789Z",
		OutputFields: map[string]interface{}{
			"container.id":               "deadbeefcafe0123456789",
			"container.name":             "web-frontend",
			"container.image.repository": "nginx",
			"proc.name":                  "bash",
			"proc.cmdline":               "bash -i",
			"proc.pid":                   float64(4242),
			"user.name":                  "root",
			"fd.name":                    "10.0.0.5:4444",
		},
		Tags:     []string{"mitre_execution", "T1059"},
		Source:   "syscall",
		Hostname: "node-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", a.UUID)
	assert.Equal(t, "Ghost EDR - Reverse Shell Detected", a.Rule)
	assert.Equal(t, PriorityCritical, a.Priority)
	assert.Equal(t, "deadbeefcafe0123456789", a.ContainerID)
	assert.Equal(t, "deadbeefcafe", a.ShortContainerID())
	assert.Equal(t, "web-frontend", a.ContainerName)
	assert.Equal(t, "nginx", a.ContainerImage)
	assert.Equal(t, "bash", a.ProcName)
	assert.Equal(t, 4242, a.ProcPID)
	assert.Equal(t, "root", a.UserName)
	assert.Equal(t, "10.0.0.5:4444", a.FDName)
	assert.Equal(t, "node-1", a.Hostname)

	want, _ := time.Parse(time.RFC3339Nano, "2026-08-20T10:30:00.123456789Z")
	assert.Equal(t, want, a.Time)
}

func TestNormalizeMissingRule(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(RawAlert{Priority: "warning"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNormalizeInvalidPriority(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(RawAlert{Rule: "Some Rule", Priority: "severe"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNormalizeDefaults(t *testing.T) {
	fixed := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	n := &Normalizer{now: func() time.Time { return fixed }}

	a, err := n.Normalize(RawAlert{
		Rule:     "Some Rule",
		Priority: "warning",
		Time:     "not-a-timestamp",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, a.UUID, "missing uuid should be assigned")
	assert.Equal(t, fixed, a.Time, "unparseable time should fall back to receipt time")
	assert.Equal(t, "syscall", a.Source)
	assert.Empty(t, a.ContainerID)
	assert.Empty(t, a.ContainerName)
}

func TestNormalizeFallbackFieldKeys(t *testing.T) {
	n := NewNormalizer()

	a, err := n.Normalize(RawAlert{
		Rule:     "Some Rule",
		Priority: "warning",
		OutputFields: map[string]interface{}{
			"container_id":   "cafe0123",
			"container_name": "batch-worker",
			"image":          "alpine",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "cafe0123", a.ContainerID)
	assert.Equal(t, "batch-worker", a.ContainerName)
	assert.Equal(t, "alpine", a.ContainerImage)
}

func TestAlertMitreTags(t *testing.T) {
	a := &Alert{Tags: []string{"mitre_execution", "T1059", "container", "mitre_persistence"}}

	assert.Equal(t, []string{"mitre_execution", "mitre_persistence"}, a.MitreTactics())
	assert.Equal(t, []string{"T1059"}, a.TechniqueIDs())
}
