package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject/config"
	"github.com/aerialflame7125/zenject/pool"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	s := config.Default()
	assert.Equal(t, config.Throw, s.ValidationErrorResponse)
	assert.Equal(t, config.NonLazyOnly, s.ValidationRootResolveMethod)
	assert.True(t, s.DisplayWarningWhenResolvingDuringInstall)
	assert.Equal(t, pool.DefaultSettings(), s.DefaultPool)
	assert.NoError(t, s.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	s, err := config.Load(config.WithEnvPrefix("ZENJECT_TEST_DEFAULTS"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeFile(t, "config.yml", `
validation_error_response: Log
validation_root_resolve_method: All
display_warning_when_resolving_during_install: false
default_pool:
  initial_size: 4
  max_size: 64
  expand_method: Double
`)

	s, err := config.Load(config.WithConfigFile(path), config.WithEnvPrefix("ZENJECT_TEST_FILE"))
	require.NoError(t, err)

	assert.Equal(t, config.Log, s.ValidationErrorResponse)
	assert.Equal(t, config.All, s.ValidationRootResolveMethod)
	assert.False(t, s.DisplayWarningWhenResolvingDuringInstall)
	assert.Equal(t, pool.Settings{InitialSize: 4, MaxSize: 64, ExpandMethod: pool.Double}, s.DefaultPool)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yml", "default_pool:\n  max_size: 8\n")
	t.Setenv("ZENJECT_TEST_ENV_DEFAULT_POOL_MAX_SIZE", "16")
	t.Setenv("ZENJECT_TEST_ENV_VALIDATION_ERROR_RESPONSE", "Log")

	s, err := config.Load(config.WithConfigFile(path), config.WithEnvPrefix("ZENJECT_TEST_ENV"))
	require.NoError(t, err)

	assert.Equal(t, 16, s.DefaultPool.MaxSize)
	assert.Equal(t, config.Log, s.ValidationErrorResponse)
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "ZENJECT_TEST_DOTENV_DEFAULT_POOL_EXPAND_METHOD"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=Disabled\n")

	s, err := config.Load(config.WithEnvFile(path), config.WithEnvPrefix("ZENJECT_TEST_DOTENV"))
	require.NoError(t, err)
	assert.Equal(t, pool.Disabled, s.DefaultPool.ExpandMethod)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts func(t *testing.T) []config.LoaderOption
	}{
		{
			name: "missing config file",
			opts: func(t *testing.T) []config.LoaderOption {
				return []config.LoaderOption{config.WithConfigFile(filepath.Join(t.TempDir(), "nope.yml"))}
			},
		},
		{
			name: "missing env file",
			opts: func(t *testing.T) []config.LoaderOption {
				return []config.LoaderOption{config.WithEnvFile(filepath.Join(t.TempDir(), ".env"))}
			},
		},
		{
			name: "unknown enum",
			opts: func(t *testing.T) []config.LoaderOption {
				return []config.LoaderOption{config.WithConfigFile(writeFile(t, "c.yml", "validation_error_response: Shout\n"))}
			},
		},
		{
			name: "invalid pool bounds",
			opts: func(t *testing.T) []config.LoaderOption {
				return []config.LoaderOption{config.WithConfigFile(writeFile(t, "c.yml", "default_pool:\n  initial_size: 9\n  max_size: 2\n"))}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append(tt.opts(t), config.WithEnvPrefix("ZENJECT_TEST_ERRORS"))
			_, err := config.Load(opts...)
			assert.Error(t, err)
		})
	}
}

func TestValidationErrorResponse_Text(t *testing.T) {
	var r config.ValidationErrorResponse
	require.NoError(t, r.UnmarshalText([]byte("throw")))
	assert.Equal(t, config.Throw, r)
	assert.ErrorIs(t, r.UnmarshalText([]byte("maybe")), config.ErrInvalidEnum)
	assert.Equal(t, "Unknown(5)", config.ValidationErrorResponse(5).String())
}
