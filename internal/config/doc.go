// Package config assembles the foodsync configuration.
//
// Every section is owned by the package that uses it (source.Config,
// translation.Config, publish.Config, ...) and is tagged with mapstructure
// keys and default values. Load registers those defaults on a viper
// instance, maps FOODSYNC_* environment variables onto the nested keys and
// unmarshals the result.
//
// # Precedence
//
// Flags bound by the cli package win over environment variables, which win
// over the config file, which wins over the tag defaults.
package config
