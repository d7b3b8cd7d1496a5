package v1alpha1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTime_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		time     Time
		expected string
	}{
		{
			name:     "zero time returns null",
			time:     Time{},
			expected: "null",
		},
		{
			name:     "valid time returns RFC3339",
			time:     Time{Time: time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)},
			expected: `"2025-11-03T10:30:00Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.time.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantZero  bool
		wantError bool
	}{
		{name: "null returns zero time", input: "null", wantZero: true},
		{name: "empty string returns zero time", input: `""`, wantZero: true},
		{name: "valid RFC3339 time", input: `"2025-11-03T10:30:00Z"`},
		{name: "invalid format errors", input: `"not-a-time"`, wantError: true},
		{name: "invalid JSON errors", input: `{invalid}`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			err := got.UnmarshalJSON([]byte(tt.input))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantZero, got.IsZero())
		})
	}
}

func TestTime_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantZero  bool
		wantError bool
	}{
		{name: "null returns zero time", input: "null", wantZero: true},
		{name: "valid RFC3339 time", input: "2025-11-03T10:30:00Z"},
		{name: "invalid format errors", input: "not-a-time", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			err := yaml.Unmarshal([]byte(tt.input), &got)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantZero, got.IsZero())
		})
	}
}

func TestNewTime_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2025, 11, 3, 12, 30, 0, 0, loc)

	got := NewTime(local)

	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))

	data, err := got.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-03T10:30:00Z"`, string(data))
}

func TestObjectMeta_DeepCopy(t *testing.T) {
	original := &ObjectMeta{
		Name:        "dev-box",
		Labels:      map[string]string{"team": "infra"},
		Annotations: map[string]string{"owner": "jane"},
	}

	copied := original.DeepCopy()
	require.NotNil(t, copied)
	assert.Equal(t, original, copied)

	copied.Labels["team"] = "changed"
	copied.Annotations["owner"] = "changed"
	assert.Equal(t, "infra", original.Labels["team"])
	assert.Equal(t, "jane", original.Annotations["owner"])

	var nilMeta *ObjectMeta
	assert.Nil(t, nilMeta.DeepCopy())
}
