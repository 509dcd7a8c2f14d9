// Package config loads and validates the navigator configuration:
// visibility profiles, listing settings, and the pin map.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"notenav/pkg/types"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// DefaultCoalesceDelayMs is the trailing-edge delay applied to refresh
// bursts when the config does not set one.
const DefaultCoalesceDelayMs = 120

// Profile is a named bundle of visibility rules.
type Profile struct {
	Name          string   `yaml:"name"`
	HiddenFolders []string `yaml:"hidden_folders"` // folder paths hidden with their descendants
	HiddenFiles   []string `yaml:"hidden_files"`   // glob patterns matched against base names
	HiddenTags    []string `yaml:"hidden_tags"`    // normalized tags whose files are hidden

	compiled []glob.Glob
}

// Compile parses the hidden-file glob patterns. Called by Validate; safe
// to call again after mutating HiddenFiles.
func (p *Profile) Compile() error {
	p.compiled = p.compiled[:0]
	for _, pattern := range p.HiddenFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid hidden file pattern %q: %w", pattern, err)
		}
		p.compiled = append(p.compiled, g)
	}
	return nil
}

// MatchesHiddenFile reports whether the base name matches any hidden
// filename pattern.
func (p *Profile) MatchesHiddenFile(name string) bool {
	for _, g := range p.compiled {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// HidesFolder reports whether path sits in (or is) a hidden folder.
func (p *Profile) HidesFolder(path string) bool {
	for _, hidden := range p.HiddenFolders {
		if path == hidden || strings.HasPrefix(path, hidden+"/") {
			return true
		}
	}
	return false
}

// HidesTag reports whether any of the given normalized tags is hidden.
func (p *Profile) HidesTag(tags []string) bool {
	for _, hidden := range p.HiddenTags {
		for _, tag := range tags {
			if tag == types.NormalizeTag(hidden) {
				return true
			}
		}
	}
	return false
}

// Settings are the listing-relevant options consumed by the projection
// engine.
type Settings struct {
	Sort          types.SortOption            `yaml:"sort"`
	SortOverrides map[string]types.SortOption `yaml:"sort_overrides"` // scope key → sort

	Group          types.GroupMode            `yaml:"group"`
	GroupOverrides map[string]types.GroupMode `yaml:"group_overrides"` // scope key → group mode

	ShowHiddenItems    bool `yaml:"show_hidden_items"`    // flag hidden files instead of removing them
	IncludeDescendants bool `yaml:"include_descendants"`  // folder scopes include all descendants
	PinExactFolderOnly bool `yaml:"pin_exact_folder_only"` // pins apply only to the selected folder's direct children

	CoalesceDelayMs int `yaml:"coalesce_delay_ms"`

	Collision string `yaml:"collision"` // move collision strategy: rename, skip, or overwrite
}

// Config is the full application configuration.
type Config struct {
	ActiveProfile string    `yaml:"active_profile"`
	Profiles      []Profile `yaml:"profiles"`
	Settings      Settings  `yaml:"settings"`

	// Pins maps a selection-kind name ("folder" or "tag") to the pinned
	// file paths for that context.
	Pins map[string][]string `yaml:"pins"`
}

// New returns the default configuration.
func New() *Config {
	cfg := &Config{
		ActiveProfile: "default",
		Profiles:      []Profile{{Name: "default"}},
		Pins:          map[string][]string{},
	}
	cfg.Settings.Sort = types.SortModifiedDesc
	cfg.Settings.Group = types.GroupByDate
	cfg.Settings.Collision = "rename"
	cfg.Settings.CoalesceDelayMs = DefaultCoalesceDelayMs
	cfg.Settings.SortOverrides = map[string]types.SortOption{}
	cfg.Settings.GroupOverrides = map[string]types.GroupMode{}
	return cfg
}

// Load loads configuration from the default location
// (~/.config/notenav/config.yaml).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(home, ".config", "notenav", "config.yaml"))
}

// LoadFile loads configuration from a specific file path. A missing file
// returns the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge onto defaults so unset fields keep safe values.
	if loaded.ActiveProfile != "" {
		cfg.ActiveProfile = loaded.ActiveProfile
	}
	if len(loaded.Profiles) > 0 {
		cfg.Profiles = loaded.Profiles
	}
	if loaded.Settings.Sort != "" {
		cfg.Settings.Sort = loaded.Settings.Sort
	}
	if loaded.Settings.Group != "" {
		cfg.Settings.Group = loaded.Settings.Group
	}
	if loaded.Settings.Collision != "" {
		cfg.Settings.Collision = loaded.Settings.Collision
	}
	if loaded.Settings.CoalesceDelayMs > 0 {
		cfg.Settings.CoalesceDelayMs = loaded.Settings.CoalesceDelayMs
	}
	if len(loaded.Settings.SortOverrides) > 0 {
		cfg.Settings.SortOverrides = loaded.Settings.SortOverrides
	}
	if len(loaded.Settings.GroupOverrides) > 0 {
		cfg.Settings.GroupOverrides = loaded.Settings.GroupOverrides
	}
	cfg.Settings.ShowHiddenItems = loaded.Settings.ShowHiddenItems
	cfg.Settings.IncludeDescendants = loaded.Settings.IncludeDescendants
	cfg.Settings.PinExactFolderOnly = loaded.Settings.PinExactFolderOnly
	if len(loaded.Pins) > 0 {
		cfg.Pins = loaded.Pins
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the specified file, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration and compiles profile patterns.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if !c.Settings.Sort.Valid() {
		return fmt.Errorf("invalid sort option: %s", c.Settings.Sort)
	}
	if !c.Settings.Group.Valid() {
		return fmt.Errorf("invalid group mode: %s", c.Settings.Group)
	}
	for key, sort := range c.Settings.SortOverrides {
		if !sort.Valid() {
			return fmt.Errorf("invalid sort override for %s: %s", key, sort)
		}
	}
	for key, group := range c.Settings.GroupOverrides {
		if !group.Valid() {
			return fmt.Errorf("invalid group override for %s: %s", key, group)
		}
	}
	switch c.Settings.Collision {
	case "rename", "skip", "overwrite":
	default:
		return fmt.Errorf("invalid collision strategy: %s", c.Settings.Collision)
	}
	if c.Settings.CoalesceDelayMs < 1 {
		return fmt.Errorf("coalesce delay must be >= 1 ms")
	}

	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == "" {
			return fmt.Errorf("profile %d: name is required", i)
		}
		if err := c.Profiles[i].Compile(); err != nil {
			return fmt.Errorf("profile %s: %w", c.Profiles[i].Name, err)
		}
		if c.Profiles[i].Name == c.ActiveProfile {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("active profile %q not defined", c.ActiveProfile)
	}
	return nil
}

// Profile returns the active visibility profile.
func (c *Config) Profile() *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == c.ActiveProfile {
			return &c.Profiles[i]
		}
	}
	return &c.Profiles[0]
}

// SortFor resolves the sort option for a scope, honoring overrides.
func (c *Config) SortFor(sel types.Selection) types.SortOption {
	if s, ok := c.Settings.SortOverrides[sel.Key()]; ok {
		return s
	}
	return c.Settings.Sort
}

// GroupFor resolves the effective group mode for a scope.
func (c *Config) GroupFor(sel types.Selection) types.GroupMode {
	return types.EffectiveGroupMode(c.Settings.Group, c.Settings.GroupOverrides[sel.Key()], c.SortFor(sel))
}

// PinnedFor returns the pinned paths for a selection context.
func (c *Config) PinnedFor(kind types.SelectionKind) []string {
	return c.Pins[kind.String()]
}

// Pin adds a path to the pin map for a context, ignoring duplicates.
func (c *Config) Pin(kind types.SelectionKind, path string) {
	key := kind.String()
	for _, p := range c.Pins[key] {
		if p == path {
			return
		}
	}
	if c.Pins == nil {
		c.Pins = map[string][]string{}
	}
	c.Pins[key] = append(c.Pins[key], path)
}

// Unpin removes a path from the pin map for a context.
func (c *Config) Unpin(kind types.SelectionKind, path string) {
	key := kind.String()
	pins := c.Pins[key]
	for i, p := range pins {
		if p == path {
			c.Pins[key] = append(pins[:i], pins[i+1:]...)
			return
		}
	}
}
