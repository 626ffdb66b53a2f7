// Package config holds the container settings and loads them from YAML files,
// .env files and ZENJECT_* environment variables.
//
// Example config.yml:
//
//	validation_error_response: Throw
//	validation_root_resolve_method: All
//	display_warning_when_resolving_during_install: true
//	default_pool:
//	  initial_size: 4
//	  max_size: 64
//	  expand_method: Double
package config
