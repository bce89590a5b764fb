package cli

import (
	"fmt"

	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/utils"
	"github.com/spf13/cobra"
)

func newKeyCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the public key the executor verifies requests with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.signer()
			if err != nil {
				return err
			}
			if s == nil {
				return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("no signing_key in the settings"))
			}

			pub, err := s.GetPublicKey()
			if err != nil {
				return fmt.Errorf("failed to export public key: %w", err)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(pub)
				return err
			}
			if err := utils.WriteFile(output, pub, 0644); err != nil {
				return &models.MhwdError{
					Type: models.ErrFileOp,
					Path: output,
					Err:  fmt.Errorf("failed to write public key: %w", err),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the key to this file instead of stdout")
	return cmd
}
