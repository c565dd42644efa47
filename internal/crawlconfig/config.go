// Package crawlconfig holds the crawler's tunable knobs: the things an
// operator might want to fix once in a file rather than retype as flags
// on every invocation.
package crawlconfig

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/naoina/toml"
)

// Config is the crawler's tuning surface. Struct tags follow the
// teacher's metrics.Config convention (`toml:",omitempty"`, field name
// used as the TOML key verbatim).
type Config struct {
	Scheme      string `toml:",omitempty"`
	Concurrency int    `toml:",omitempty"`
	TimeoutMS   int64  `toml:",omitempty"`
	RateLimit   int    `toml:",omitempty"`
	ASNDB       string `toml:",omitempty"`
	CountryDB   string `toml:",omitempty"`
}

// Default holds the built-in values used when no config file is given
// and no flag overrides a field.
var Default = Config{
	Scheme:      "mc",
	Concurrency: 32,
	TimeoutMS:   5000,
	RateLimit:   0,
	ASNDB:       "",
	CountryDB:   "",
}

// Timeout returns TimeoutMS as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("config file contains unknown field %q for %s", field, rt.String())
	},
}

// LoadFile reads path as TOML into a copy of Default, so any field the
// file doesn't mention keeps its built-in value. A missing file is an
// error — callers pass a path only when --config was given.
func LoadFile(path string) (Config, error) {
	cfg := Default
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyFlagOverrides layers non-zero flag-sourced values over cfg,
// implementing "CLI flags override file values override defaults".
func ApplyFlagOverrides(cfg Config, concurrency int, timeout time.Duration, rateLimit int, scheme, asnDB, countryDB string) Config {
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if timeout > 0 {
		cfg.TimeoutMS = timeout.Milliseconds()
	}
	if rateLimit > 0 {
		cfg.RateLimit = rateLimit
	}
	if scheme != "" {
		cfg.Scheme = scheme
	}
	if asnDB != "" {
		cfg.ASNDB = asnDB
	}
	if countryDB != "" {
		cfg.CountryDB = countryDB
	}
	return cfg
}
