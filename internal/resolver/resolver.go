// Package resolver computes dependency closures, conflicts and reverse
// dependencies between driver configs. Relationships are plain names looked
// up in the available and installed listings passed in.
package resolver

import (
	"context"
	"fmt"

	"github.com/ralt/mhwd/internal/models"
)

// Lister provides the two catalog listings for a bus
type Lister interface {
	AvailableConfigs(ctx context.Context, bus models.BusType) ([]models.Config, error)
	InstalledConfigs(ctx context.Context, bus models.BusType) ([]models.Config, error)
}

// Snapshot holds both listings of one bus, read once for a whole check
type Snapshot struct {
	Bus       models.BusType
	Available []models.Config
	Installed []models.Config
}

// Load reads both listings for bus
func Load(ctx context.Context, l Lister, bus models.BusType) (*Snapshot, error) {
	available, err := l.AvailableConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}
	installed, err := l.InstalledConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Bus: bus, Available: available, Installed: installed}, nil
}

// IsInstalled reports whether a config called name is installed
func (s *Snapshot) IsInstalled(name string) bool {
	_, ok := models.FindByName(s.Installed, name)
	return ok
}

// ResolveDependencies returns the configs cfg transitively needs that are not
// installed yet, each dependency placed before the configs needing it.
// Unknown names are skipped; a name met again while it is still being
// resolved counts as satisfied. Both cases are reported to report.
func ResolveDependencies(cfg *models.Config, snap *Snapshot, report models.DiagnosticFunc) []models.Config {
	r := &resolution{
		available:  make(map[string]*models.Config, len(snap.Available)),
		installed:  make(map[string]struct{}, len(snap.Installed)),
		inResult:   make(map[string]struct{}),
		inProgress: make(map[string]struct{}),
		report:     report,
	}
	for i := range snap.Available {
		// First entry wins, like a linear lookup
		if _, dup := r.available[snap.Available[i].Name]; !dup {
			r.available[snap.Available[i].Name] = &snap.Available[i]
		}
	}
	for _, inst := range snap.Installed {
		r.installed[inst.Name] = struct{}{}
	}

	r.visit(cfg)
	return r.result
}

type resolution struct {
	available  map[string]*models.Config
	installed  map[string]struct{}
	inResult   map[string]struct{}
	inProgress map[string]struct{}
	result     []models.Config
	report     models.DiagnosticFunc
}

func (r *resolution) visit(cfg *models.Config) {
	r.inProgress[cfg.Name] = struct{}{}
	defer delete(r.inProgress, cfg.Name)

	for _, dep := range cfg.Dependencies {
		if _, ok := r.installed[dep]; ok {
			continue
		}
		if _, ok := r.inResult[dep]; ok {
			continue
		}
		if _, ok := r.inProgress[dep]; ok {
			r.report.Report(models.Diagnostic{
				Kind: models.DiagDependencyCycle,
				Name: dep,
				From: cfg.Name,
				Err:  fmt.Errorf("%s depends on %s which is still being resolved", cfg.Name, dep),
			})
			continue
		}

		depCfg, ok := r.available[dep]
		if !ok {
			r.report.Report(models.Diagnostic{
				Kind: models.DiagUnknownDependency,
				Name: dep,
				From: cfg.Name,
				Err:  fmt.Errorf("dependency %s of %s is not in the catalog", dep, cfg.Name),
			})
			continue
		}

		r.visit(depCfg)

		if _, ok := r.inResult[dep]; !ok {
			r.inResult[dep] = struct{}{}
			r.result = append(r.result, *depCfg)
		}
	}
}

// FindConflicts returns the installed configs named as conflicts by cfg or
// by any of deps, without duplicates
func FindConflicts(cfg *models.Config, deps []models.Config, installed []models.Config) []models.Config {
	names := make(map[string]struct{})
	for _, c := range cfg.Conflicts {
		names[c] = struct{}{}
	}
	for _, d := range deps {
		for _, c := range d.Conflicts {
			names[c] = struct{}{}
		}
	}

	var conflicts []models.Config
	seen := make(map[string]struct{})
	for _, inst := range installed {
		if _, ok := names[inst.Name]; !ok {
			continue
		}
		if _, dup := seen[inst.Name]; dup {
			continue
		}
		seen[inst.Name] = struct{}{}
		conflicts = append(conflicts, inst)
	}
	return conflicts
}

// FindRequiredBy returns the installed configs that list name as a direct
// dependency. Dependents further up the chain are not followed.
func FindRequiredBy(name string, installed []models.Config) []models.Config {
	var requiredBy []models.Config
	seen := make(map[string]struct{})
	for _, inst := range installed {
		if !inst.DependsOn(name) {
			continue
		}
		if _, dup := seen[inst.Name]; dup {
			continue
		}
		seen[inst.Name] = struct{}{}
		requiredBy = append(requiredBy, inst)
	}
	return requiredBy
}

// Resolver runs the checks against a catalog
type Resolver struct {
	lister Lister
	report models.DiagnosticFunc
}

// New creates a resolver reading listings from l
func New(l Lister, report models.DiagnosticFunc) *Resolver {
	return &Resolver{lister: l, report: report}
}

// ResolveDependencies loads the listings of bus and resolves cfg's dependencies
func (r *Resolver) ResolveDependencies(ctx context.Context, cfg *models.Config, bus models.BusType) ([]models.Config, error) {
	snap, err := Load(ctx, r.lister, bus)
	if err != nil {
		return nil, err
	}
	return ResolveDependencies(cfg, snap, r.report), nil
}

// FindConflicts returns the installed configs conflicting with cfg or with
// deps, as returned by ResolveDependencies
func (r *Resolver) FindConflicts(ctx context.Context, cfg *models.Config, deps []models.Config, bus models.BusType) ([]models.Config, error) {
	installed, err := r.lister.InstalledConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}
	return FindConflicts(cfg, deps, installed), nil
}

// FindRequiredBy returns the installed configs directly depending on cfg
func (r *Resolver) FindRequiredBy(ctx context.Context, cfg *models.Config, bus models.BusType) ([]models.Config, error) {
	installed, err := r.lister.InstalledConfigs(ctx, bus)
	if err != nil {
		return nil, err
	}
	return FindRequiredBy(cfg.Name, installed), nil
}
