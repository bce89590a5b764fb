package models

import (
	"slices"
	"sort"
)

// Config represents a parsed MHWDCONFIG driver configuration
type Config struct {
	// Core metadata
	Name       string
	Version    string
	Info       string
	Priority   int
	FreeDriver bool

	// Patterns are independent AND-groups; every group must be matched by some device
	Patterns []HardwarePattern

	// Relationships, resolved by name against the catalogs
	Dependencies []string
	Conflicts    []string

	// File information
	Bus        BusType
	ConfigPath string
	BasePath   string
	Root       string
}

// MatchesDevices reports whether every pattern group is satisfied by at least one device
func (c *Config) MatchesDevices(devices []Device) bool {
	for _, p := range c.Patterns {
		found := false
		for _, d := range devices {
			if d.Matches(p) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchesDevice reports whether any single pattern group matches the device
func (c *Config) MatchesDevice(device Device) bool {
	for _, p := range c.Patterns {
		if device.Matches(p) {
			return true
		}
	}
	return false
}

// DependsOn reports whether name is a direct dependency
func (c *Config) DependsOn(name string) bool {
	return slices.Contains(c.Dependencies, name)
}

// ConflictsWith reports whether name is listed as a conflict
func (c *Config) ConflictsWith(name string) bool {
	return slices.Contains(c.Conflicts, name)
}

// SortByPriority orders configs by descending priority, then by name
func SortByPriority(configs []Config) {
	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].Priority != configs[j].Priority {
			return configs[i].Priority > configs[j].Priority
		}
		return configs[i].Name < configs[j].Name
	})
}

// ConfigNames returns the names of configs in order
func ConfigNames(configs []Config) []string {
	names := make([]string, 0, len(configs))
	for _, c := range configs {
		names = append(names, c.Name)
	}
	return names
}

// FindByName returns the first config with the given name
func FindByName(configs []Config, name string) (*Config, bool) {
	for i := range configs {
		if configs[i].Name == name {
			return &configs[i], true
		}
	}
	return nil, false
}
