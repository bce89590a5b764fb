package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/resolver"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	var bf busFlags

	cmd := &cobra.Command{
		Use:   "info NAME",
		Short: "Show a config with its dependencies and conflicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bus := bf.bus()

			cfg, err := a.catalog.FindConfig(ctx, args[0], bus)
			if err != nil {
				return err
			}

			installed := true
			if _, err := a.catalog.FindInstalledConfig(ctx, cfg.Name, bus); err != nil {
				if !errors.Is(err, models.ErrNotInstalled) {
					return err
				}
				installed = false
			}

			r := resolver.New(a.catalog, a.catalog.Diagnostics())
			deps, err := r.ResolveDependencies(ctx, cfg, bus)
			if err != nil {
				return err
			}
			conflicts, err := r.FindConflicts(ctx, cfg, deps, bus)
			if err != nil {
				return err
			}
			requiredBy, err := r.FindRequiredBy(ctx, cfg, bus)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := a.styles
			field := func(label, value string) {
				if value == "" {
					value = "-"
				}
				fmt.Fprintf(out, "%s %s\n", st.label.Render(fmt.Sprintf("%-14s", label+":")), value)
			}

			fmt.Fprintln(out, st.header.Render(cfg.Name))
			field("Version", cfg.Version)
			field("Info", cfg.Info)
			field("Bus", cfg.Bus.String())
			field("Priority", fmt.Sprint(cfg.Priority))
			field("Free driver", fmt.Sprint(cfg.FreeDriver))
			field("Installed", fmt.Sprint(installed))
			field("Depends", strings.Join(cfg.Dependencies, " "))
			field("Conflicts", strings.Join(cfg.Conflicts, " "))
			field("To install", strings.Join(models.ConfigNames(deps), " "))
			field("Blocking", strings.Join(models.ConfigNames(conflicts), " "))
			field("Required by", strings.Join(models.ConfigNames(requiredBy), " "))
			field("Descriptor", cfg.ConfigPath)

			for i, p := range cfg.Patterns {
				fmt.Fprintln(out, st.label.Render(fmt.Sprintf("Pattern %d:", i+1)))
				fmt.Fprintf(out, "  class %s vendor %s device %s\n",
					strings.Join(p.ClassIDs, " "), strings.Join(p.VendorIDs, " "), strings.Join(p.DeviceIDs, " "))
				blacklist := append(append(append([]string{}, p.BlacklistedClassIDs...), p.BlacklistedVendorIDs...), p.BlacklistedDeviceIDs...)
				if len(blacklist) > 0 {
					fmt.Fprintf(out, "  %s %s\n", st.warn.Render("blacklisted"), strings.Join(blacklist, " "))
				}
			}
			return nil
		},
	}

	bf.register(cmd)
	return cmd
}
