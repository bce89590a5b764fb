package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ralt/mhwd/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		bf        busFlags
		installed bool
		available bool
		detail    bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed and available configs for the detected hardware",
		Long: `Lists, per bus, the installed configs matching the detected hardware and
the matching configs that are not installed yet. Without --installed or
--available both are shown, without --pci or --usb both buses are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !installed && !available {
				installed, available = true, true
			}
			showDetail := detail || a.verbose
			out := cmd.OutOrStdout()
			st := a.styles
			buses := bf.buses()

			for _, bus := range buses {
				fmt.Fprintln(out, st.header.Render(fmt.Sprintf("> %s drivers", strings.ToUpper(bus.String()))))

				matching, err := a.catalog.FindMatchingConfigs(cmd.Context(), bus)
				if err != nil {
					// One missing catalog does not hide the other bus
					if len(buses) > 1 && errors.Is(err, models.ErrInvalidPath) {
						logrus.Warnf("Skipping %s: %v", bus, err)
						fmt.Fprintf(out, "%s\n\n", st.hint.Render("  no catalog"))
						continue
					}
					return err
				}

				if len(matching) == 0 {
					fmt.Fprintf(out, "%s\n\n", st.hint.Render("  No suitable drivers found for your hardware"))
					continue
				}

				local, err := a.catalog.InstalledConfigs(cmd.Context(), bus)
				if err != nil {
					return err
				}

				if installed {
					// The installed copy describes what is actually on the system
					var installedMatching []models.Config
					for _, cfg := range local {
						if _, ok := models.FindByName(matching, cfg.Name); ok {
							installedMatching = append(installedMatching, cfg)
						}
					}
					models.SortByPriority(installedMatching)
					a.printConfigs(out, "Installed", installedMatching, showDetail)
				}

				if available {
					var notInstalled []models.Config
					for _, cfg := range matching {
						if _, ok := models.FindByName(local, cfg.Name); !ok {
							notInstalled = append(notInstalled, cfg)
						}
					}
					a.printConfigs(out, "Available", notInstalled, showDetail)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().BoolVarP(&installed, "installed", "i", false, "Show only installed configs")
	cmd.Flags().BoolVarP(&available, "available", "a", false, "Show only configs that are not installed")
	cmd.Flags().BoolVarP(&detail, "detail", "d", false, "Show dependencies, conflicts and descriptor paths")

	return cmd
}

// printConfigs prints one section of the listing, nothing when configs is empty
func (a *app) printConfigs(w io.Writer, title string, configs []models.Config, detail bool) {
	if len(configs) == 0 {
		return
	}
	st := a.styles

	fmt.Fprintln(w, st.label.Render("  "+title))
	fmt.Fprintf(w, "    %-32s %-16s %-10s %s\n", "NAME", "VERSION", "FREEDRIVER", "PRIORITY")
	for _, cfg := range configs {
		fmt.Fprintf(w, "    %s %-16s %-10t %d\n",
			st.name.Render(fmt.Sprintf("%-32s", cfg.Name)), cfg.Version, cfg.FreeDriver, cfg.Priority)

		if !detail {
			continue
		}
		if cfg.Info != "" {
			fmt.Fprintf(w, "        %s %s\n", st.label.Render("info:"), st.value.Render(cfg.Info))
		}
		if len(cfg.Dependencies) > 0 {
			fmt.Fprintf(w, "        %s %s\n", st.label.Render("depends:"), st.value.Render(strings.Join(cfg.Dependencies, " ")))
		}
		if len(cfg.Conflicts) > 0 {
			fmt.Fprintf(w, "        %s %s\n", st.label.Render("conflicts:"), st.value.Render(strings.Join(cfg.Conflicts, " ")))
		}
		fmt.Fprintf(w, "        %s %s\n", st.label.Render("path:"), st.value.Render(cfg.ConfigPath))
	}
}
