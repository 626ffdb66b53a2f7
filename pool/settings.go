package pool

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ExpandMethod controls how a pool grows when Spawn finds the free stack empty.
type ExpandMethod int

const (
	// OneAtATime allocates a single new item per exhausted Spawn.
	OneAtATime ExpandMethod = iota

	// Double grows the pool by its current total size (or by one when empty).
	Double

	// Disabled makes an exhausted Spawn fail instead of allocating.
	Disabled
)

// String returns the string representation of the ExpandMethod.
func (m ExpandMethod) String() string {
	switch m {
	case OneAtATime:
		return "OneAtATime"
	case Double:
		return "Double"
	case Disabled:
		return "Disabled"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// IsValid checks if the expand method is one of the known values.
func (m ExpandMethod) IsValid() bool {
	return m >= OneAtATime && m <= Disabled
}

// MarshalText implements encoding.TextMarshaler.
func (m ExpandMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ExpandMethod) UnmarshalText(text []byte) error {
	switch string(text) {
	case "OneAtATime", "oneatatime", "one_at_a_time":
		*m = OneAtATime
	case "Double", "double":
		*m = Double
	case "Disabled", "disabled", "fixed":
		*m = Disabled
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExpandMethod, string(text))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m ExpandMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *ExpandMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return m.UnmarshalText([]byte(s))
}

// Settings bounds the size of a pool.
type Settings struct {
	// InitialSize is the number of items allocated when the pool is created.
	InitialSize int `mapstructure:"initial_size" json:"initialSize" validate:"gte=0"`

	// MaxSize caps NumTotal. Zero means unbounded.
	MaxSize int `mapstructure:"max_size" json:"maxSize" validate:"gte=0"`

	ExpandMethod ExpandMethod `mapstructure:"expand_method" json:"expandMethod" validate:"oneof=0 1 2"`
}

// DefaultSettings returns an empty, unbounded pool that grows one item at a time.
func DefaultSettings() Settings {
	return Settings{ExpandMethod: OneAtATime}
}

// FixedSize returns settings for a pool that preallocates n items and never grows.
func FixedSize(n int) Settings {
	return Settings{InitialSize: n, MaxSize: n, ExpandMethod: Disabled}
}

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if s.MaxSize > 0 && s.InitialSize > s.MaxSize {
		return fmt.Errorf("%w: initial size %d exceeds max size %d", ErrInvalidSettings, s.InitialSize, s.MaxSize)
	}

	return nil
}
