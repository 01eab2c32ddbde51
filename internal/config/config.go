// Package config loads runtime settings from an optional file, the
// environment and command-line flags.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// EnvPrefix namespaces environment overrides, e.g. OPTION_PRICER_FORMULA.
const EnvPrefix = "OPTION_PRICER"

// Config holds every tunable of the pricer.
type Config struct {
	Verbosity     int    `mapstructure:"verbosity"`       // 0=errors,1=info,2=debug,3=trace
	Formula       string `mapstructure:"formula"`         // legacy | canonical
	Format        string `mapstructure:"format"`          // text | json | csv
	Precision     int    `mapstructure:"precision"`       // decimal places, -1 = full
	HasHeader     bool   `mapstructure:"header"`          // contract files start with a header row
	All           bool   `mapstructure:"all"`             // report every row, not just the last
	Addr          string `mapstructure:"addr"`            // HTTP listen address
	MassiveAPIKey string `mapstructure:"massive_api_key"` // spot lookups
	SpotsFile     string `mapstructure:"spots_file"`      // ticker,spot CSV consulted before Massive
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Verbosity: 1,
		Formula:   "legacy",
		Format:    "text",
		Precision: -1,
		HasHeader: true,
		Addr:      ":8080",
	}
}

// Load merges defaults, the file at path (if any), the environment and
// the flags in fs (if any), in increasing priority.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("verbosity", d.Verbosity)
	v.SetDefault("formula", d.Formula)
	v.SetDefault("format", d.Format)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("header", d.HasHeader)
	v.SetDefault("all", d.All)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("massive_api_key", "")
	v.SetDefault("spots_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// unprefixed keys, as the market data tooling expects
	if err := v.BindEnv("massive_api_key", EnvPrefix+"_MASSIVE_API_KEY", "MASSIVE_API_KEY", "POLYGON_API_KEY"); err != nil {
		return nil, errors.Wrap(err, "bind env")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var keys = []string{"verbosity", "formula", "format", "precision", "header", "all", "addr", "massive_api_key", "spots_file"}

// bindFlags binds every flag named after a config key (with dashes for
// underscores). Flags the command does not define are skipped.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range keys {
		f := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag %s", f.Name)
		}
	}

	// --no-header is the inverse of the header key
	if f := fs.Lookup("no-header"); f != nil && f.Changed && f.Value.String() == "true" {
		v.Set("header", false)
	}
	return nil
}

// Validate rejects unknown enumerations.
func (c *Config) Validate() error {
	if _, err := pricing.ParseFormula(c.Formula); err != nil {
		return errors.Wrap(err, "config")
	}
	switch c.Format {
	case "text", "json", "csv":
	default:
		return errors.Errorf("config: unknown format %q", c.Format)
	}
	if c.Verbosity < 0 {
		return errors.Errorf("config: verbosity %d < 0", c.Verbosity)
	}
	return nil
}

// Engine builds the pricing engine described by the configuration.
func (c *Config) Engine() (*pricing.Engine, error) {
	f, err := pricing.ParseFormula(c.Formula)
	if err != nil {
		return nil, err
	}
	return pricing.NewEngine(pricing.WithFormula(f)), nil
}
