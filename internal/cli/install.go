package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ralt/mhwd/internal/agent"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/transaction"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// requestFlags are shared by the commands producing executor requests
type requestFlags struct {
	force      bool
	noConfirm  bool
	output     string
	detachSign bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Ignore conflicts on install, force removal on remove")
	cmd.Flags().BoolVarP(&f.noConfirm, "noconfirm", "y", false, "Do not ask for confirmation")
	f.registerOutput(cmd)
}

func (f *requestFlags) registerOutput(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the request to this file instead of stdout")
	cmd.Flags().BoolVar(&f.detachSign, "detach-sign", false, "Leave the request unsigned and write a detached signature to OUTPUT.asc")
}

func newInstallCmd(a *app) *cobra.Command {
	var (
		bf busFlags
		rf requestFlags
	)

	cmd := &cobra.Command{
		Use:   "install NAME",
		Short: "Validate an install and emit the request for it",
		Long: `Checks that NAME exists, is not installed yet and does not conflict with
installed configs, resolves its missing dependencies, and writes the
install request for the transaction executor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.builder().AddToInstall(cmd.Context(), args[0], bf.bus(), transaction.Options{Force: rf.force})
			if err != nil {
				return err
			}
			return a.submit(cmd, plan, rf)
		},
	}

	bf.register(cmd)
	rf.register(cmd)
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var (
		bf busFlags
		rf requestFlags
	)

	cmd := &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"uninstall"},
		Short:   "Validate a removal and emit the request for it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.builder().AddToRemove(cmd.Context(), args[0], bf.bus(), transaction.Options{Force: rf.force})
			if err != nil {
				return err
			}
			return a.submit(cmd, plan, rf)
		},
	}

	bf.register(cmd)
	rf.register(cmd)
	return cmd
}

// submit shows the plan, asks for confirmation and writes the request
func (a *app) submit(cmd *cobra.Command, plan *transaction.Plan, rf requestFlags) error {
	s, err := a.signer()
	if err != nil {
		return err
	}
	if rf.detachSign {
		if rf.output == "" {
			return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("--detach-sign needs --output"))
		}
		if s == nil {
			return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("--detach-sign needs signing_key in the settings"))
		}
	}

	a.printPlan(cmd.ErrOrStderr(), plan)

	if !rf.noConfirm && a.isTerminal() {
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Proceed?")
		if err != nil {
			return err
		}
		if !ok {
			logrus.Info("Aborted")
			return nil
		}
	}

	req := agent.NewRequest(plan.Command, busName(plan))
	req.AddSources(plan.Configs()...)

	if rf.detachSign {
		return req.SaveDetached(rf.output, s)
	}
	if rf.output != "" {
		return req.Save(rf.output, s)
	}
	return req.Emit(cmd.OutOrStdout(), s)
}

func busName(plan *transaction.Plan) string {
	if plan.Target == nil {
		return ""
	}
	return plan.Bus.String()
}

func (a *app) printPlan(w io.Writer, plan *transaction.Plan) {
	st := a.styles
	cmd := plan.Command

	fmt.Fprintf(w, "%s %s\n", st.header.Render(fmt.Sprintf("> %s:", cmd.Operation)), strings.Join(cmd.Packages, " "))
	if len(plan.Dependencies) > 0 {
		fmt.Fprintf(w, "  %s %s\n", st.label.Render("dependencies:"), strings.Join(models.ConfigNames(plan.Dependencies), " "))
	}
	if len(plan.Conflicts) > 0 {
		fmt.Fprintf(w, "  %s %s\n", st.warn.Render("forced over conflicts:"), strings.Join(models.ConfigNames(plan.Conflicts), " "))
	}
	if cmd.Force {
		fmt.Fprintf(w, "  %s\n", st.warn.Render("forced removal"))
	}
	if cmd.Refresh {
		fmt.Fprintf(w, "  %s\n", st.label.Render("refreshing package databases"))
	}
}

// confirm asks a yes/no question, yes being the default
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [Y/n] ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
