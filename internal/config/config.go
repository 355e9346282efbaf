// Package config loads the panel catalog and navigation settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EnvPath overrides the default config location.
const EnvPath = "PANELNAV_CONFIG"

// Panel is one navigable panel of the catalog.
type Panel struct {
	ID    string   `toml:"id"`
	Title string   `toml:"title"`
	Body  string   `toml:"body"`
	Links []string `toml:"links"` // IDs of panels reachable from this one
}

// Settings tune the navigation stack and its observers.
type Settings struct {
	Root              string   `toml:"root"`
	SerialRounds      bool     `toml:"serial_rounds"`
	TransitionTimeout Duration `toml:"transition_timeout"`
	Verbose           bool     `toml:"verbose"`
	TraceService      string   `toml:"trace_service"`
}

// Config is the top-level TOML structure.
type Config struct {
	Settings Settings `toml:"settings"`
	Panels   []Panel  `toml:"panel"`
}

// Duration is a time.Duration written as a string ("1500ms", "2s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var panelID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate implements validation.Validatable.
func (p Panel) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.Match(panelID)),
		validation.Field(&p.Title, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Root, validation.Required),
		validation.Field(&s.TransitionTimeout, validation.By(nonNegative)),
		validation.Field(&s.TraceService, validation.Length(0, 64)),
	)
}

// Validate checks the catalog as a whole: unique ids, a known root and links
// that point at existing panels.
func (c Config) Validate() error {
	ids := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		ids[p.ID] = true
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Settings, validation.By(rootExists(ids))),
		validation.Field(&c.Panels,
			validation.Required,
			validation.By(uniqueIDs),
			validation.Each(validation.By(linksExist(ids))),
		),
	)
}

func nonNegative(v any) error {
	if d, ok := v.(Duration); ok && d.Duration < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func rootExists(ids map[string]bool) validation.RuleFunc {
	return func(v any) error {
		s, _ := v.(Settings)
		if s.Root != "" && !ids[s.Root] {
			return fmt.Errorf("root %q is not a defined panel", s.Root)
		}
		return nil
	}
}

func uniqueIDs(v any) error {
	panels, _ := v.([]Panel)
	seen := make(map[string]bool, len(panels))
	for _, p := range panels {
		if seen[p.ID] {
			return fmt.Errorf("duplicate panel id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func linksExist(ids map[string]bool) validation.RuleFunc {
	return func(v any) error {
		p, _ := v.(Panel)
		for _, l := range p.Links {
			if !ids[l] {
				return fmt.Errorf("link %q is not a defined panel", l)
			}
		}
		return nil
	}
}

// Panel returns the panel with the given id.
func (c *Config) Panel(id string) (Panel, bool) {
	for _, p := range c.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// Parse decodes and validates TOML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse panels.toml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid panels.toml: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in catalog.
func Default() *Config {
	cfg, err := Parse([]byte(DefaultTOML))
	if err != nil {
		panic(fmt.Sprintf("config: built-in catalog is invalid: %v", err))
	}
	return cfg
}

// ResolvePath returns the config location: flagPath if set, else $PANELNAV_CONFIG,
// else panels.toml under the user config directory.
func ResolvePath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "panelnav", "panels.toml"), nil
}

// Load reads the config at path. A missing file is created with the built-in
// catalog so users have something to edit.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0755); mkErr != nil {
			return nil, fmt.Errorf("create config dir: %w", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(DefaultTOML), 0644); wErr != nil {
			return nil, fmt.Errorf("write default config: %w", wErr)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// DefaultTOML is the catalog written on first run.
const DefaultTOML = `# panelnav panel catalog
# Each [[panel]] can link to other panels by id; following a link pushes it.

[settings]
root = "home"
serial_rounds = true
transition_timeout = "2s"
verbose = false
trace_service = "panelnav"

[[panel]]
id = "home"
title = "Home"
body = "Start here. Follow a link to push a panel, esc goes back."
links = ["settings", "profile", "about"]

[[panel]]
id = "settings"
title = "Settings"
body = "Application settings."
links = ["display", "profile"]

[[panel]]
id = "display"
title = "Display"
body = "Theme and layout options."
links = ["home"]

[[panel]]
id = "profile"
title = "Profile"
body = "Who you are."
links = ["settings"]

[[panel]]
id = "about"
title = "About"
body = "panelnav: a navigation stack with coordinated transitions."
`
