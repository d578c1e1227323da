package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// connectCmd opens the wallet's connect screen and, with --wait, blocks
// until the approval comes back.
func connectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess, ok := appCtx.Wallet.Current(); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "Replacing session with %s.\n", sess.WalletPublicKey)
			}
			_, t, err := appCtx.Wallet.Connect(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok, err := await(cmd, t); err != nil || !ok {
				return err
			}
			sess, ok := appCtx.Wallet.Current()
			if !ok {
				return fmt.Errorf("connection not completed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s.\n", sess.WalletPublicKey)
			return nil
		},
	}
	addWaitFlags(cmd)
	return cmd
}

func disconnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Ask the wallet to end the session and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := appCtx.Wallet.Disconnect(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok, err := await(cmd, t); err != nil || !ok {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Disconnected.")
			return nil
		},
	}
	addWaitFlags(cmd)
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the wallet session but keep the key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Wallet.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and identity state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := appCtx.Wallet.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State:       %s\n", st.State)
			if st.Connected() {
				fmt.Fprintf(out, "Wallet:      %s\n", st.WalletAddress)
			}
			fmt.Fprintf(out, "Fingerprint: %s\n", st.Fingerprint)
			if st.EphemeralIdentity {
				fmt.Fprintln(out, "Identity:    ephemeral (storage unavailable)")
			}
			return nil
		},
	}
}
