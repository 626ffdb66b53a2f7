package zenject_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
)

func TestScopeType(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		tests := []struct {
			scope    zenject.ScopeType
			expected string
		}{
			{zenject.ScopeUnset, "Unset"},
			{zenject.ScopeTransient, "Transient"},
			{zenject.ScopeSingleton, "Singleton"},
			{zenject.ScopeType(99), "Unknown(99)"},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.scope.String())
		}
	})

	t.Run("IsValid", func(t *testing.T) {
		assert.True(t, zenject.ScopeSingleton.IsValid())
		assert.True(t, zenject.ScopeUnset.IsValid())
		assert.False(t, zenject.ScopeType(-1).IsValid())
		assert.False(t, zenject.ScopeType(3).IsValid())
	})

	t.Run("Text", func(t *testing.T) {
		var s zenject.ScopeType
		require.NoError(t, s.UnmarshalText([]byte("singleton")))
		assert.Equal(t, zenject.ScopeSingleton, s)

		text, err := zenject.ScopeTransient.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "Transient", string(text))

		err = s.UnmarshalText([]byte("forever"))
		var enumErr zenject.EnumError
		require.ErrorAs(t, err, &enumErr)
		assert.Equal(t, "scope", enumErr.Enum)
		assert.Equal(t, zenject.ScopeSingleton, s, "failed parses leave the value unchanged")
	})

	t.Run("JSON", func(t *testing.T) {
		type binding struct {
			Scope zenject.ScopeType `json:"scope"`
		}

		data, err := json.Marshal(binding{Scope: zenject.ScopeSingleton})
		require.NoError(t, err)
		assert.JSONEq(t, `{"scope":"Singleton"}`, string(data))

		var b binding
		require.NoError(t, json.Unmarshal([]byte(`{"scope":"Transient"}`), &b))
		assert.Equal(t, zenject.ScopeTransient, b.Scope)

		assert.Error(t, json.Unmarshal([]byte(`{"scope":"Weekly"}`), &b))
		assert.Error(t, json.Unmarshal([]byte(`{"scope":1}`), &b))
	})
}

func TestInjectSources(t *testing.T) {
	tests := []struct {
		source   zenject.InjectSources
		expected string
	}{
		{zenject.SourceAny, "Any"},
		{zenject.SourceLocal, "Local"},
		{zenject.SourceParent, "Parent"},
		{zenject.SourceAnyParent, "AnyParent"},
		{zenject.InjectSources(7), "Unknown(7)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.source.String())
			assert.Equal(t, tt.expected != "Unknown(7)", tt.source.IsValid())
		})
	}
}

func TestInheritanceMethod(t *testing.T) {
	assert.Equal(t, "None", zenject.InheritNone.String())
	assert.Equal(t, "CopyDirectOnly", zenject.CopyDirectOnly.String())
	assert.Equal(t, "CopyIntoAll", zenject.CopyIntoAll.String())
	assert.Equal(t, "MoveDirectOnly", zenject.MoveDirectOnly.String())
	assert.Equal(t, "MoveIntoAll", zenject.MoveIntoAll.String())
	assert.Equal(t, "Unknown(9)", zenject.InheritanceMethod(9).String())
}
