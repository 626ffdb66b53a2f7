package pool_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject/pool"
)

func TestExpandMethod_String(t *testing.T) {
	tests := []struct {
		method   pool.ExpandMethod
		expected string
	}{
		{pool.OneAtATime, "OneAtATime"},
		{pool.Double, "Double"},
		{pool.Disabled, "Disabled"},
		{pool.ExpandMethod(42), "Unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.method.String())
		})
	}
}

func TestExpandMethod_TextRoundTrip(t *testing.T) {
	var m pool.ExpandMethod
	require.NoError(t, m.UnmarshalText([]byte("double")))
	assert.Equal(t, pool.Double, m)

	require.NoError(t, m.UnmarshalText([]byte("fixed")))
	assert.Equal(t, pool.Disabled, m)

	err := m.UnmarshalText([]byte("sideways"))
	assert.ErrorIs(t, err, pool.ErrInvalidExpandMethod)

	data, err := json.Marshal(pool.Settings{InitialSize: 1, MaxSize: 2, ExpandMethod: pool.Double})
	require.NoError(t, err)
	assert.JSONEq(t, `{"initialSize":1,"maxSize":2,"expandMethod":"Double"}`, string(data))

	var s pool.Settings
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, pool.Double, s.ExpandMethod)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings pool.Settings
		wantErr  bool
	}{
		{"defaults", pool.DefaultSettings(), false},
		{"fixed", pool.FixedSize(3), false},
		{"negative initial", pool.Settings{InitialSize: -1}, true},
		{"negative max", pool.Settings{MaxSize: -1}, true},
		{"initial above max", pool.Settings{InitialSize: 5, MaxSize: 2}, true},
		{"unknown expand", pool.Settings{ExpandMethod: pool.ExpandMethod(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, pool.ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
