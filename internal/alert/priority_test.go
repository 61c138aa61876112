package alert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Priority
		wantError bool
	}{
		{
			name:  "lowercase critical",
			input: "critical",
			want:  PriorityCritical,
		},
		{
			name:  "mixed case",
			input: "Warning",
			want:  PriorityWarning,
		},
		{
			name:  "uppercase emergency",
			input: "EMERGENCY",
			want:  PriorityEmergency,
		},
		{
			name:  "surrounding whitespace",
			input: "  notice  ",
			want:  PriorityNotice,
		},
		{
			name:      "unknown name",
			input:     "catastrophic",
			wantError: true,
		},
		{
			name:      "empty",
			input:     "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	ordered := []Priority{
		PriorityDebug,
		PriorityInformational,
		PriorityNotice,
		PriorityWarning,
		PriorityError,
		PriorityCritical,
		PriorityAlert,
		PriorityEmergency,
	}

	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i] > ordered[i-1],
			"%s should rank above %s", ordered[i], ordered[i-1])
	}
}

func TestPriorityAtLeast(t *testing.T) {
	assert.True(t, PriorityCritical.AtLeast(PriorityWarning))
	assert.True(t, PriorityWarning.AtLeast(PriorityWarning))
	assert.False(t, PriorityNotice.AtLeast(PriorityWarning))
	assert.True(t, PriorityEmergency.AtLeast(PriorityDebug))
}

func TestPriorityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(PriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, `"critical"`, string(data))

	var p Priority
	require.NoError(t, json.Unmarshal([]byte(`"Error"`), &p))
	assert.Equal(t, PriorityError, p)

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &p))
}
