package cli

import (
	"fmt"
	"os"

	"github.com/ralt/mhwd/internal/catalog"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/settings"
	"github.com/ralt/mhwd/internal/signer"
	"github.com/ralt/mhwd/internal/transaction"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds what every subcommand shares once the root has run
type app struct {
	settingsPath string
	snapshot     string
	verbose      bool
	noColor      bool

	settings *settings.Settings
	catalog  *catalog.Catalog
	styles   styles

	// isTerminal reports whether confirmation prompts can be shown
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mhwd",
		Short: "Match driver configs to detected hardware",
		Long: `mhwd matches the driver configs of the system catalog against the
PCI and USB devices present, and validates install and remove requests
before handing them to the transaction executor.

Catalogs:
  - available configs under /var/lib/mhwd/db/{pci,usb}
  - installed configs under /var/lib/mhwd/local/{pci,usb}`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.settingsPath, "settings", settings.DefaultSettingsPath, "Settings file")
	rootCmd.PersistentFlags().StringVar(&a.snapshot, "snapshot", "", "Read devices from a snapshot instead of sysfs")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newDevicesCmd(a))
	rootCmd.AddCommand(newInfoCmd(a))
	rootCmd.AddCommand(newInstallCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newUpgradeCmd(a))
	rootCmd.AddCommand(newKeyCmd(a))

	return rootCmd
}

func (a *app) setup() error {
	s, err := settings.LoadFrom(a.settingsPath)
	if err != nil {
		return err
	}
	if a.snapshot != "" {
		s.Snapshot = a.snapshot
	}

	// Setup logging
	if a.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(s.Level())
	}

	a.settings = s
	a.catalog = catalog.New(s.Paths, s.DeviceSource())
	a.styles = newStyles(a.noColor)
	return nil
}

func (a *app) builder() *transaction.Builder {
	return transaction.NewBuilder(a.catalog, a.catalog.Diagnostics())
}

// signer returns the request signer, or nil when no key is configured
func (a *app) signer() (signer.Signer, error) {
	if a.settings.SigningKey == "" {
		return nil, nil
	}
	s, err := signer.NewGPGSigner(a.settings.SigningKey, a.settings.SigningPassphrase)
	if err != nil {
		return nil, &models.MhwdError{
			Type: models.ErrInvalidConfig,
			Path: a.settings.SigningKey,
			Err:  fmt.Errorf("failed to initialize signer: %w", err),
		}
	}
	logrus.Debugf("Signing requests with %s", a.settings.SigningKey)
	return s, nil
}
