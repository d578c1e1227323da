package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the dapp encryption key pair if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Identity.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			if appCtx.Identity.Ephemeral() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: key pair could not be stored and will not survive this run")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity ready.\nFingerprint: %s\n", fp)
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the dapp public key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Identity.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
			return nil
		},
	}
}

// resetCmd discards the session and the key pair. The wallet must be
// reconnected afterwards.
func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the wallet session and generate a new key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Wallet.Reset(cmd.Context()); err != nil {
				return err
			}
			fp, err := appCtx.Identity.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset complete.\nNew fingerprint: %s\n", fp)
			return nil
		},
	}
}
