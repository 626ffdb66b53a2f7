package zenject

import (
	"github.com/rs/zerolog"

	"github.com/aerialflame7125/zenject/config"
)

// Option configures a Container.
type Option interface {
	apply(*containerOptions)
}

// containerOptions holds container configuration.
type containerOptions struct {
	logger     *zerolog.Logger
	settings   *config.Settings
	types      TypeInfoProvider
	validating bool
}

// optionFunc adapts a function to Option.
type optionFunc func(*containerOptions)

func (f optionFunc) apply(opts *containerOptions) {
	f(opts)
}

// WithLogger sets the logger. Sub-containers inherit it unless overridden.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.logger = &logger
	})
}

// WithSettings sets the container settings.
func WithSettings(settings config.Settings) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.settings = &settings
	})
}

// WithTypes sets the descriptor source. Sub-containers share their parent's
// unless overridden.
func WithTypes(types TypeInfoProvider) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.types = types
	})
}

// WithValidation puts the container in validation mode, where object graphs
// are walked without calling constructors.
func WithValidation() Option {
	return optionFunc(func(opts *containerOptions) {
		opts.validating = true
	})
}
