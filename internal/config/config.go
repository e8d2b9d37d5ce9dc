// Package config holds the crawl settings: the start address and the
// wait/timeout discipline between navigation steps.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultStartURL is the entry page of the data dictionary.
const DefaultStartURL = "https://datadictionary.ices.on.ca/Applications/DataDictionary/Default.aspx"

// Config controls the crawl. The zero value is not usable; start from
// Default() and optionally overlay a settings file.
type Config struct {
	// StartURL is the address of the dictionary home page.
	StartURL string `yaml:"start_url"`

	// SettleDelay is the fixed quiescence wait after each page
	// transition settles.
	SettleDelay Duration `yaml:"settle_delay"`
	// DetailSettleDelay is the longer quiescence wait after selecting a
	// variable; detail content can keep rendering after the network goes
	// idle.
	DetailSettleDelay Duration `yaml:"detail_settle_delay"`
	// ExpandSettleDelay is the wait after clicking each expansion
	// control.
	ExpandSettleDelay Duration `yaml:"expand_settle_delay"`

	// LinkTimeout bounds the wait for the sub-entry link to appear,
	// confirming the top-level selection took effect.
	LinkTimeout Duration `yaml:"link_timeout"`
	// ListingTimeout bounds the wait for the variable listing table.
	ListingTimeout Duration `yaml:"listing_timeout"`
	// StepTimeout bounds any single navigation step.
	StepTimeout Duration `yaml:"step_timeout"`

	// ExpandUntilStable repeats expand-and-extract passes until the
	// extracted detail stops changing, instead of the default single
	// re-extraction pass.
	ExpandUntilStable bool `yaml:"expand_until_stable"`
}

// Default returns the standard wait discipline.
func Default() Config {
	return Config{
		StartURL:          DefaultStartURL,
		SettleDelay:       Duration(1 * time.Second),
		DetailSettleDelay: Duration(5 * time.Second),
		ExpandSettleDelay: Duration(2 * time.Second),
		LinkTimeout:       Duration(30 * time.Second),
		ListingTimeout:    Duration(10 * time.Second),
		StepTimeout:       Duration(60 * time.Second),
	}
}

// Load reads a YAML settings file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "1500ms" or "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
