package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aerialflame7125/zenject/pool"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidEnum     = errors.New("invalid enum value")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationErrorResponse decides what a validating container does with an
// error raised while instantiating a type.
type ValidationErrorResponse int

const (
	// Log records the error and keeps validating.
	Log ValidationErrorResponse = iota

	// Throw aborts validation with the error.
	Throw
)

func (r ValidationErrorResponse) String() string {
	switch r {
	case Log:
		return "Log"
	case Throw:
		return "Throw"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

func (r ValidationErrorResponse) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ValidationErrorResponse) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Log", "log":
		*r = Log
	case "Throw", "throw":
		*r = Throw
	default:
		return fmt.Errorf("%w: validation error response %q", ErrInvalidEnum, string(text))
	}
	return nil
}

func (r ValidationErrorResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *ValidationErrorResponse) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}

// RootResolveMethod selects which bindings a validating container resolves
// when checking its roots.
type RootResolveMethod int

const (
	// NonLazyOnly resolves only bindings marked NonLazy.
	NonLazyOnly RootResolveMethod = iota

	// All resolves every binding in the container.
	All
)

func (m RootResolveMethod) String() string {
	switch m {
	case NonLazyOnly:
		return "NonLazyOnly"
	case All:
		return "All"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

func (m RootResolveMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *RootResolveMethod) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NonLazyOnly", "nonlazyonly", "non_lazy_only":
		*m = NonLazyOnly
	case "All", "all":
		*m = All
	default:
		return fmt.Errorf("%w: root resolve method %q", ErrInvalidEnum, string(text))
	}
	return nil
}

// Settings configures container behavior that is not part of any binding.
type Settings struct {
	ValidationErrorResponse     ValidationErrorResponse `mapstructure:"validation_error_response" json:"validationErrorResponse" validate:"oneof=0 1"`
	ValidationRootResolveMethod RootResolveMethod       `mapstructure:"validation_root_resolve_method" json:"validationRootResolveMethod" validate:"oneof=0 1"`

	// DisplayWarningWhenResolvingDuringInstall logs a warning when something is
	// resolved while installers are still adding bindings.
	DisplayWarningWhenResolvingDuringInstall bool `mapstructure:"display_warning_when_resolving_during_install" json:"displayWarningWhenResolvingDuringInstall"`

	// DefaultPool is used by memory pool bindings that do not set their own sizes.
	DefaultPool pool.Settings `mapstructure:"default_pool" json:"defaultPool"`
}

// Default returns the settings used when none are supplied.
func Default() Settings {
	return Settings{
		ValidationErrorResponse:                  Throw,
		ValidationRootResolveMethod:              NonLazyOnly,
		DisplayWarningWhenResolvingDuringInstall: true,
		DefaultPool:                              pool.DefaultSettings(),
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.DefaultPool.Validate(); err != nil {
		return fmt.Errorf("%w: default pool: %w", ErrInvalidSettings, err)
	}
	return nil
}
