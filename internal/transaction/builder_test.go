package transaction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ralt/mhwd/internal/agent"
	"github.com/ralt/mhwd/internal/catalog"
	"github.com/ralt/mhwd/internal/devices"
	"github.com/ralt/mhwd/internal/models"
)

// fixture lays out available and installed catalogs under a temp dir
type fixture struct {
	t     *testing.T
	paths models.RepositoryPaths
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	paths := models.RepositoryPathsUnder(t.TempDir())
	for _, dir := range []string{paths.PCIConfigDir, paths.PCIDatabaseDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	return &fixture{t: t, paths: paths}
}

func (f *fixture) write(root, name, content string) {
	f.t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		f.t.Fatalf("Failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, models.DefaultConfigFilename), []byte(content), 0644); err != nil {
		f.t.Fatalf("Failed to write config: %v", err)
	}
}

func (f *fixture) available(name, content string) {
	f.write(f.paths.PCIConfigDir, name, content)
}

func (f *fixture) installed(name, content string) {
	f.write(f.paths.PCIDatabaseDir, name, content)
}

func (f *fixture) builder() *Builder {
	c := catalog.New(f.paths, devices.NewStaticSource(), catalog.WithDiagnostics(func(models.Diagnostic) {}))
	return NewBuilder(c, nil)
}

const (
	nvidiaConfig = `NAME="video-nvidia"
CLASSIDS="0300"
VENDORIDS="10de"
MHWD_CONFLICTS="video-nouveau"
`
	nouveauConfig = `NAME="video-nouveau"
CLASSIDS="0300"
VENDORIDS="10de"
`
	networkBaseConfig = `NAME="network-base"
CLASSIDS="0280"
`
	wifiExtraConfig = `NAME="wifi-extra"
CLASSIDS="0280"
MHWD_DEPENDS="network-base"
`
)

func TestAddToInstallWithDependencies(t *testing.T) {
	f := newFixture(t)
	f.available("network-base", networkBaseConfig)
	f.available("wifi-extra", wifiExtraConfig)

	plan, err := f.builder().AddToInstall(context.Background(), "wifi-extra", models.BusPCI, Options{})
	if err != nil {
		t.Fatalf("AddToInstall failed: %v", err)
	}

	if plan.Command.Operation != agent.OpInstall {
		t.Errorf("Expected install operation, got %s", plan.Command.Operation)
	}
	if want := []string{"network-base", "wifi-extra"}; !reflect.DeepEqual(plan.Command.Packages, want) {
		t.Errorf("Packages = %v, want %v", plan.Command.Packages, want)
	}
	if got := models.ConfigNames(plan.Dependencies); !reflect.DeepEqual(got, []string{"network-base"}) {
		t.Errorf("Dependencies = %v", got)
	}
	if got := models.ConfigNames(plan.Configs()); !reflect.DeepEqual(got, plan.Command.Packages) {
		t.Errorf("Configs() = %v, want command order %v", got, plan.Command.Packages)
	}
}

func TestAddToInstallSkipsInstalledDependency(t *testing.T) {
	f := newFixture(t)
	f.available("network-base", networkBaseConfig)
	f.available("wifi-extra", wifiExtraConfig)
	f.installed("network-base", networkBaseConfig)

	plan, err := f.builder().AddToInstall(context.Background(), "wifi-extra", models.BusPCI, Options{})
	if err != nil {
		t.Fatalf("AddToInstall failed: %v", err)
	}
	if want := []string{"wifi-extra"}; !reflect.DeepEqual(plan.Command.Packages, want) {
		t.Errorf("Packages = %v, want %v", plan.Command.Packages, want)
	}
}

func TestAddToInstallConflicts(t *testing.T) {
	f := newFixture(t)
	f.available("video-nvidia", nvidiaConfig)
	f.available("video-nouveau", nouveauConfig)
	f.installed("video-nouveau", nouveauConfig)

	plan, err := f.builder().AddToInstall(context.Background(), "video-nvidia", models.BusPCI, Options{})
	if plan != nil {
		t.Errorf("Expected no plan, got %+v", plan)
	}
	if !errors.Is(err, models.ErrHasConflicts) {
		t.Fatalf("Expected HasConflicts, got %v", err)
	}

	var me *models.MhwdError
	if !errors.As(err, &me) {
		t.Fatalf("Expected *MhwdError, got %T", err)
	}
	if want := []string{"video-nouveau"}; !reflect.DeepEqual(me.Names, want) {
		t.Errorf("Names = %v, want %v", me.Names, want)
	}
}

func TestAddToInstallDependencyConflicts(t *testing.T) {
	f := newFixture(t)
	f.available("video-nouveau", nouveauConfig)
	f.available("video-nvidia", nvidiaConfig)
	f.available("video-hybrid", `NAME="video-hybrid"
MHWD_DEPENDS="video-nvidia"
`)
	f.installed("video-nouveau", nouveauConfig)

	_, err := f.builder().AddToInstall(context.Background(), "video-hybrid", models.BusPCI, Options{})
	if !errors.Is(err, models.ErrHasConflicts) {
		t.Fatalf("Expected HasConflicts through dependency, got %v", err)
	}
}

func TestAddToInstallForceKeepsConflicts(t *testing.T) {
	f := newFixture(t)
	f.available("video-nvidia", nvidiaConfig)
	f.installed("video-nouveau", nouveauConfig)

	plan, err := f.builder().AddToInstall(context.Background(), "video-nvidia", models.BusPCI, Options{Force: true})
	if err != nil {
		t.Fatalf("Forced AddToInstall failed: %v", err)
	}
	if got := models.ConfigNames(plan.Conflicts); !reflect.DeepEqual(got, []string{"video-nouveau"}) {
		t.Errorf("Conflicts = %v", got)
	}
	if want := []string{"video-nvidia"}; !reflect.DeepEqual(plan.Command.Packages, want) {
		t.Errorf("Packages = %v, want %v", plan.Command.Packages, want)
	}
}

func TestAddToInstallAlreadyInstalled(t *testing.T) {
	f := newFixture(t)
	f.available("video-nvidia", nvidiaConfig)
	f.installed("video-nvidia", nvidiaConfig)

	plan, err := f.builder().AddToInstall(context.Background(), "video-nvidia", models.BusPCI, Options{Force: true})
	if !errors.Is(err, models.ErrAlreadyInstalled) {
		t.Fatalf("Expected AlreadyInstalled, got %v", err)
	}
	if plan != nil {
		t.Errorf("Expected no command, got %+v", plan.Command)
	}
}

func TestAddToInstallNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder().AddToInstall(context.Background(), "video-nvidia", models.BusPCI, Options{})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
}

func TestAddToInstallMissingAvailableRoot(t *testing.T) {
	f := newFixture(t)
	if err := os.RemoveAll(f.paths.PCIConfigDir); err != nil {
		t.Fatalf("Failed to remove root: %v", err)
	}

	_, err := f.builder().AddToInstall(context.Background(), "video-nvidia", models.BusPCI, Options{})
	if !errors.Is(err, models.ErrInvalidPath) {
		t.Fatalf("Expected InvalidPath, got %v", err)
	}
}

func TestAddToRemove(t *testing.T) {
	f := newFixture(t)
	f.installed("video-nvidia", nvidiaConfig)

	tests := []struct {
		name  string
		force bool
	}{
		{"plain", false},
		{"forced", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := f.builder().AddToRemove(context.Background(), "video-nvidia", models.BusPCI, Options{Force: tt.force})
			if err != nil {
				t.Fatalf("AddToRemove failed: %v", err)
			}
			want := agent.Command{Operation: agent.OpRemove, Packages: []string{"video-nvidia"}, Force: tt.force}
			if !reflect.DeepEqual(plan.Command, want) {
				t.Errorf("Command = %+v, want %+v", plan.Command, want)
			}
		})
	}
}

func TestAddToRemoveRequiredByOthers(t *testing.T) {
	f := newFixture(t)
	f.installed("network-base", networkBaseConfig)
	f.installed("wifi-extra", wifiExtraConfig)

	for _, force := range []bool{false, true} {
		_, err := f.builder().AddToRemove(context.Background(), "network-base", models.BusPCI, Options{Force: force})
		if !errors.Is(err, models.ErrRequiredByOthers) {
			t.Fatalf("Expected RequiredByOthers (force=%t), got %v", force, err)
		}

		var me *models.MhwdError
		if errors.As(err, &me) && !reflect.DeepEqual(me.Names, []string{"wifi-extra"}) {
			t.Errorf("Names = %v", me.Names)
		}
	}
}

func TestAddToRemoveNotInstalled(t *testing.T) {
	f := newFixture(t)
	f.available("video-nvidia", nvidiaConfig)

	_, err := f.builder().AddToRemove(context.Background(), "video-nvidia", models.BusPCI, Options{})
	if !errors.Is(err, models.ErrNotInstalled) {
		t.Fatalf("Expected NotInstalled, got %v", err)
	}
}

func TestUpgrade(t *testing.T) {
	plan := newFixture(t).builder().Upgrade(true)
	if plan.Command.Operation != agent.OpUpgrade || !plan.Command.Refresh {
		t.Errorf("Unexpected upgrade command %+v", plan.Command)
	}
	if plan.Command.Packages == nil || len(plan.Command.Packages) != 0 {
		t.Errorf("Expected empty package list, got %v", plan.Command.Packages)
	}
	if plan.Target != nil {
		t.Errorf("Upgrade has no target")
	}
}
