// Package settings loads the engine settings file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ralt/mhwd/internal/devices"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/utils"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsPath is read when no --settings flag is given
const DefaultSettingsPath = "/etc/mhwd/engine.yaml"

// Settings configures where the engine looks for catalogs and devices
type Settings struct {
	Paths models.RepositoryPaths `yaml:"paths"`

	// SysfsRoot is the sysfs mount used for device detection
	SysfsRoot string `yaml:"sysfs_root"`
	// Snapshot replaces sysfs detection with a saved device snapshot
	Snapshot string `yaml:"snapshot,omitempty"`

	// SigningKey is an OpenPGP private key used to clear-sign requests
	SigningKey        string `yaml:"signing_key,omitempty"`
	SigningPassphrase string `yaml:"signing_passphrase,omitempty"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when no file exists
func Default() *Settings {
	return &Settings{
		Paths:     models.DefaultRepositoryPaths(),
		SysfsRoot: devices.DefaultSysfsRoot,
		LogLevel:  "info",
	}
}

// LoadFrom reads settings from path on top of the defaults.
// A missing file yields the defaults.
func LoadFrom(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("Settings file %s not found, using defaults", path)
			return s, nil
		}
		return nil, &models.MhwdError{
			Type: models.ErrInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("failed to read settings: %w", err),
		}
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, &models.MhwdError{
			Type: models.ErrInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("failed to parse settings: %w", err),
		}
	}

	if err := s.Validate(); err != nil {
		return nil, &models.MhwdError{Type: models.ErrInvalidConfig, Path: path, Err: err}
	}

	logrus.Debugf("Loaded settings from %s", path)
	return s, nil
}

// Validate checks the settings and fills in blank values
func (s *Settings) Validate() error {
	defaults := Default()

	if s.Paths.PCIConfigDir == "" {
		s.Paths.PCIConfigDir = defaults.Paths.PCIConfigDir
	}
	if s.Paths.USBConfigDir == "" {
		s.Paths.USBConfigDir = defaults.Paths.USBConfigDir
	}
	if s.Paths.PCIDatabaseDir == "" {
		s.Paths.PCIDatabaseDir = defaults.Paths.PCIDatabaseDir
	}
	if s.Paths.USBDatabaseDir == "" {
		s.Paths.USBDatabaseDir = defaults.Paths.USBDatabaseDir
	}
	if s.Paths.ConfigFilename == "" {
		s.Paths.ConfigFilename = defaults.Paths.ConfigFilename
	}
	if strings.ContainsRune(s.Paths.ConfigFilename, os.PathSeparator) {
		return fmt.Errorf("config_filename %q must be a plain file name", s.Paths.ConfigFilename)
	}
	if s.SysfsRoot == "" {
		s.SysfsRoot = defaults.SysfsRoot
	}

	if s.LogLevel == "" {
		s.LogLevel = defaults.LogLevel
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	return nil
}

// Level returns the configured log level
func (s *Settings) Level() logrus.Level {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// DeviceSource returns the snapshot source when one is configured and the
// sysfs source otherwise
func (s *Settings) DeviceSource() devices.Source {
	if s.Snapshot != "" {
		return devices.NewSnapshotSource(s.Snapshot)
	}
	return devices.NewSysfsSource(s.SysfsRoot)
}

// SaveTo writes the settings as YAML
func (s *Settings) SaveTo(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := utils.WriteFile(path, data, 0600); err != nil {
		return &models.MhwdError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to write settings: %w", err),
		}
	}
	return nil
}
