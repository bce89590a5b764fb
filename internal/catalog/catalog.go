// Package catalog answers queries against the available and installed
// driver config catalogs. Every call rescans the catalog roots, so edits
// on disk are visible to the next query.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ralt/mhwd/internal/devices"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/parser"
	"github.com/ralt/mhwd/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Catalog loads driver configs from the catalog roots
type Catalog struct {
	paths   models.RepositoryPaths
	scanner scanner.Scanner
	devices devices.Source
	report  models.DiagnosticFunc
}

// Option customizes a Catalog
type Option func(*Catalog)

// WithDiagnostics sends skipped files and similar events to fn instead of the log
func WithDiagnostics(fn models.DiagnosticFunc) Option {
	return func(c *Catalog) {
		c.report = fn
	}
}

// New creates a catalog over paths, matching against devices from src
func New(paths models.RepositoryPaths, src devices.Source, opts ...Option) *Catalog {
	c := &Catalog{
		paths:   paths,
		devices: src,
		report:  LogDiagnostic,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scanner = scanner.NewFileSystemScanner(paths.Filename(), c.report)
	return c
}

// Diagnostics returns the diagnostics sink used by this catalog
func (c *Catalog) Diagnostics() models.DiagnosticFunc {
	return c.report
}

// Devices returns the devices currently present on bus
func (c *Catalog) Devices(ctx context.Context, bus models.BusType) ([]models.Device, error) {
	if c.devices == nil {
		return nil, nil
	}
	return c.devices.Devices(ctx, bus)
}

// AvailableConfigs lists the configs of the system catalog for bus.
// A missing root is an ErrInvalidPath error.
func (c *Catalog) AvailableConfigs(ctx context.Context, bus models.BusType) ([]models.Config, error) {
	return c.load(ctx, c.paths.AvailableRoot(bus), bus, false)
}

// InstalledConfigs lists the configs recorded as installed for bus.
// A missing root means nothing is installed.
func (c *Catalog) InstalledConfigs(ctx context.Context, bus models.BusType) ([]models.Config, error) {
	return c.load(ctx, c.paths.InstalledRoot(bus), bus, true)
}

// FindConfig returns the available config called name
func (c *Catalog) FindConfig(ctx context.Context, name string, bus models.BusType) (*models.Config, error) {
	configs, err := c.AvailableConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}

	if cfg, ok := models.FindByName(configs, name); ok {
		return cfg, nil
	}

	return nil, models.NewError(models.ErrNotFound, name, fmt.Errorf("no %s config named %q", bus, name))
}

// FindInstalledConfig returns the installed config called name
func (c *Catalog) FindInstalledConfig(ctx context.Context, name string, bus models.BusType) (*models.Config, error) {
	configs, err := c.InstalledConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}

	if cfg, ok := models.FindByName(configs, name); ok {
		return cfg, nil
	}

	return nil, models.NewError(models.ErrNotInstalled, name, fmt.Errorf("%s config %q is not installed", bus, name))
}

// FindMatchingConfigs returns the available configs whose every pattern
// group is satisfied by the devices on bus, best first
func (c *Catalog) FindMatchingConfigs(ctx context.Context, bus models.BusType) ([]models.Config, error) {
	devs, err := c.Devices(ctx, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s devices: %w", bus, err)
	}

	configs, err := c.AvailableConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}

	var matching []models.Config
	for _, cfg := range configs {
		if cfg.MatchesDevices(devs) {
			matching = append(matching, cfg)
		}
	}

	models.SortByPriority(matching)
	logrus.Debugf("%d of %d %s configs match %d devices", len(matching), len(configs), bus, len(devs))
	return matching, nil
}

// FindMatchingConfigsForDevice returns the available configs with at least
// one pattern group matching device, best first
func (c *Catalog) FindMatchingConfigsForDevice(ctx context.Context, device models.Device) ([]models.Config, error) {
	configs, err := c.AvailableConfigs(ctx, device.Bus)
	if err != nil {
		return nil, err
	}

	var matching []models.Config
	for _, cfg := range configs {
		if cfg.MatchesDevice(device) {
			matching = append(matching, cfg)
		}
	}

	models.SortByPriority(matching)
	return matching, nil
}

func (c *Catalog) load(ctx context.Context, root string, bus models.BusType, missingOK bool) ([]models.Config, error) {
	scanned, err := c.scanner.Scan(ctx, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if missingOK {
				c.report.Report(models.Diagnostic{Kind: models.DiagMissingRoot, Path: root, Err: err})
				return nil, nil
			}
			return nil, &models.MhwdError{Type: models.ErrInvalidPath, Path: root, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.MhwdError{Type: models.ErrInvalidPath, Path: root, Err: err}
	}

	configs := make([]models.Config, 0, len(scanned))
	for _, sc := range scanned {
		cfg, err := parser.ParseConfig(sc.Path, bus)
		if err != nil {
			c.report.Report(models.Diagnostic{Kind: models.DiagSkippedFile, Path: sc.Path, Err: err})
			continue
		}
		cfg.Root = root
		configs = append(configs, *cfg)
	}

	return configs, nil
}

// LogDiagnostic is the default diagnostics sink
func LogDiagnostic(d models.Diagnostic) {
	entry := logrus.WithField("kind", d.Kind.String())
	if d.Path != "" {
		entry = entry.WithField("path", d.Path)
	}
	if d.Name != "" {
		entry = entry.WithField("config", d.Name)
	}
	if d.From != "" {
		entry = entry.WithField("from", d.From)
	}

	switch d.Kind {
	case models.DiagSkippedFile, models.DiagUnknownDependency:
		entry.Warnf("Skipped: %v", d.Err)
	default:
		entry.Debugf("Skipped: %v", d.Err)
	}
}
