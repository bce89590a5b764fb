package cli

import (
	"fmt"
	"strings"

	"github.com/ralt/mhwd/internal/devices"
	"github.com/ralt/mhwd/internal/models"
	"github.com/spf13/cobra"
)

func newDevicesCmd(a *app) *cobra.Command {
	var (
		bf   busFlags
		save string
	)

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Show detected devices and their candidate configs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := a.settings.DeviceSource()

			if save != "" {
				snap, err := devices.TakeSnapshot(ctx, src)
				if err != nil {
					return err
				}
				return snap.Save(save)
			}

			out := cmd.OutOrStdout()
			st := a.styles

			for _, bus := range bf.buses() {
				devs, err := a.catalog.Devices(ctx, bus)
				if err != nil {
					return err
				}

				byCategory := make(map[models.Category][]models.Device)
				for _, d := range devs {
					byCategory[d.Category()] = append(byCategory[d.Category()], d)
				}

				fmt.Fprintln(out, st.header.Render(fmt.Sprintf("> %s devices: %d", strings.ToUpper(bus.String()), len(devs))))
				for _, category := range models.Categories {
					group := byCategory[category]
					if len(group) == 0 {
						continue
					}

					fmt.Fprintf(out, "  %s\n", st.label.Render(category.String()))
					for _, d := range group {
						fmt.Fprintf(out, "    %s", st.name.Render(d.String()))
						if name := deviceName(d); name != "" {
							fmt.Fprintf(out, " %s", st.value.Render(name))
						}
						fmt.Fprintln(out)

						configs, err := a.catalog.FindMatchingConfigsForDevice(ctx, d)
						if err != nil {
							return err
						}
						if len(configs) > 0 {
							fmt.Fprintf(out, "      %s %s\n", st.hint.Render("configs:"), strings.Join(models.ConfigNames(configs), " "))
						}
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	bf.register(cmd)
	cmd.Flags().StringVar(&save, "save", "", "Write a device snapshot (.json, .json.gz, .json.zst or .json.xz) instead of printing")

	return cmd
}

func deviceName(d models.Device) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.Info.VendorName, d.Info.DeviceName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if d.Info.Driver != "" {
		parts = append(parts, "["+d.Info.Driver+"]")
	}
	return strings.Join(parts, " ")
}
