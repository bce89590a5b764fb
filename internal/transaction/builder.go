// Package transaction validates install and remove requests against the
// catalogs and turns them into agent commands. Nothing here touches the
// installed system: the executor runs the resulting commands.
package transaction

import (
	"context"
	"fmt"

	"github.com/ralt/mhwd/internal/agent"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/resolver"
	"github.com/sirupsen/logrus"
)

// Catalog is what the builder needs from the config catalogs
type Catalog interface {
	resolver.Lister
	FindConfig(ctx context.Context, name string, bus models.BusType) (*models.Config, error)
}

// Options tune validation
type Options struct {
	// Force skips the conflict check on install and marks removals as forced
	Force bool
}

// Plan is a validated transaction together with what was checked
type Plan struct {
	Bus     models.BusType
	Command agent.Command
	// Target is the config asked for, nil for upgrades
	Target       *models.Config
	Dependencies []models.Config
	// Conflicts is only non-empty for forced installs
	Conflicts  []models.Config
	RequiredBy []models.Config
}

// Configs returns every config the plan touches, in command order
func (p *Plan) Configs() []models.Config {
	configs := append([]models.Config{}, p.Dependencies...)
	if p.Target != nil {
		configs = append(configs, *p.Target)
	}
	return configs
}

// Builder validates transactions
type Builder struct {
	catalog Catalog
	report  models.DiagnosticFunc
}

// NewBuilder creates a builder over c. Resolution diagnostics go to report.
func NewBuilder(c Catalog, report models.DiagnosticFunc) *Builder {
	return &Builder{catalog: c, report: report}
}

// AddToInstall checks that name can be installed on bus and returns the
// command installing its missing dependencies followed by name itself
func (b *Builder) AddToInstall(ctx context.Context, name string, bus models.BusType, opts Options) (*Plan, error) {
	cfg, err := b.catalog.FindConfig(ctx, name, bus)
	if err != nil {
		return nil, err
	}

	snap, err := resolver.Load(ctx, b.catalog, bus)
	if err != nil {
		return nil, err
	}

	if snap.IsInstalled(cfg.Name) {
		return nil, models.NewError(models.ErrAlreadyInstalled, cfg.Name, fmt.Errorf("%s config %q is already installed", bus, cfg.Name))
	}

	deps := resolver.ResolveDependencies(cfg, snap, b.report)
	conflicts := resolver.FindConflicts(cfg, deps, snap.Installed)

	plan := &Plan{
		Bus:          bus,
		Target:       cfg,
		Dependencies: deps,
	}

	if len(conflicts) > 0 {
		names := models.ConfigNames(conflicts)
		if !opts.Force {
			return nil, &models.MhwdError{
				Type:   models.ErrHasConflicts,
				Config: cfg.Name,
				Names:  names,
				Err:    fmt.Errorf("%q conflicts with installed configs", cfg.Name),
			}
		}
		logrus.Warnf("Forcing %s despite conflicts with %v", cfg.Name, names)
		plan.Conflicts = conflicts
	}

	packages := make([]string, 0, len(deps)+1)
	packages = append(packages, models.ConfigNames(deps)...)
	packages = append(packages, cfg.Name)
	plan.Command = agent.MakeInstall(packages)

	logrus.Debugf("Install plan for %s: %v", cfg.Name, packages)
	return plan, nil
}

// AddToRemove checks that name is installed on bus and nothing installed
// depends on it directly, and returns the command removing it
func (b *Builder) AddToRemove(ctx context.Context, name string, bus models.BusType, opts Options) (*Plan, error) {
	installed, err := b.catalog.InstalledConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}

	cfg, ok := models.FindByName(installed, name)
	if !ok {
		return nil, models.NewError(models.ErrNotInstalled, name, fmt.Errorf("%s config %q is not installed", bus, name))
	}

	requiredBy := resolver.FindRequiredBy(cfg.Name, installed)
	if len(requiredBy) > 0 {
		return nil, &models.MhwdError{
			Type:   models.ErrRequiredByOthers,
			Config: cfg.Name,
			Names:  models.ConfigNames(requiredBy),
			Err:    fmt.Errorf("%q is required by installed configs", cfg.Name),
		}
	}

	plan := &Plan{
		Bus:     bus,
		Target:  cfg,
		Command: agent.MakeRemove([]string{cfg.Name}, opts.Force),
	}

	logrus.Debugf("Remove plan for %s (force=%t)", cfg.Name, opts.Force)
	return plan, nil
}

// Upgrade returns a full system upgrade command
func (b *Builder) Upgrade(refresh bool) *Plan {
	return &Plan{Command: agent.MakeUpgrade(refresh)}
}
