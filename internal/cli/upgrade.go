package cli

import (
	"github.com/spf13/cobra"
)

func newUpgradeCmd(a *app) *cobra.Command {
	var (
		refresh bool
		rf      requestFlags
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Emit a full system upgrade request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Nothing to confirm for upgrades
			rf.noConfirm = true
			return a.submit(cmd, a.builder().Upgrade(refresh), rf)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh package databases first")
	rf.registerOutput(cmd)
	return cmd
}
