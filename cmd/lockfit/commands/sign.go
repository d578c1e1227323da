package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lockfit/internal/crypto"
	"lockfit/internal/domain"
	"lockfit/internal/services/dispatch"
	"lockfit/internal/services/pending"
)

// Transactions are built elsewhere and passed in as base58 serialized
// bytes, the same encoding the wallet returns.

func signMessageCmd() *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "sign-message <message>",
		Short: "Ask the wallet to sign a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, display := []byte(args[0]), dispatch.DisplayUTF8
			if asHex {
				b, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
				if err != nil {
					return fmt.Errorf("message is not hex: %w", err)
				}
				msg, display = b, dispatch.DisplayHex
			}
			t, err := appCtx.Wallet.SignMessage(cmd.Context(), msg, display)
			return report(cmd, t, err)
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "message is hex and should be displayed as hex")
	addWaitFlags(cmd)
	return cmd
}

func signTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-tx <base58-tx>",
		Short: "Ask the wallet to sign a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := decodeTx(args[0])
			if err != nil {
				return err
			}
			t, err := appCtx.Wallet.SignTransaction(cmd.Context(), tx)
			return report(cmd, t, err)
		},
	}
	addWaitFlags(cmd)
	return cmd
}

func signAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-all <base58-tx>...",
		Short: "Ask the wallet to sign several transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs := make([][]byte, len(args))
			for i, a := range args {
				tx, err := decodeTx(a)
				if err != nil {
					return err
				}
				txs[i] = tx
			}
			t, err := appCtx.Wallet.SignAllTransactions(cmd.Context(), txs)
			return report(cmd, t, err)
		},
	}
	addWaitFlags(cmd)
	return cmd
}

func signSendCmd() *cobra.Command {
	var (
		skipPreflight bool
		commitment    string
		maxRetries    int
	)
	cmd := &cobra.Command{
		Use:   "sign-send <base58-tx>",
		Short: "Ask the wallet to sign and submit a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := decodeTx(args[0])
			if err != nil {
				return err
			}
			var opts *domain.SendOptions
			if skipPreflight || commitment != "" || cmd.Flags().Changed("max-retries") {
				opts = &domain.SendOptions{SkipPreflight: skipPreflight, PreflightCommitment: commitment}
				if cmd.Flags().Changed("max-retries") {
					opts.MaxRetries = &maxRetries
				}
			}
			t, err := appCtx.Wallet.SignAndSendTransaction(cmd.Context(), tx, opts)
			return report(cmd, t, err)
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "skip the preflight simulation")
	cmd.Flags().StringVar(&commitment, "preflight-commitment", "", "commitment level for preflight")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum send retries")
	addWaitFlags(cmd)
	return cmd
}

func decodeTx(s string) ([]byte, error) {
	tx, err := crypto.DecodeBase58(s)
	if err != nil {
		return nil, fmt.Errorf("transaction is not base58: %w", err)
	}
	return tx, nil
}

// report waits for the wallet's answer and prints it.
func report(cmd *cobra.Command, t *pending.Ticket, err error) error {
	if err != nil {
		return err
	}
	resp, ok, err := await(cmd, t)
	if err != nil || !ok {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case resp.Signature != "":
		fmt.Fprintf(out, "Signature: %s\n", resp.Signature)
	case len(resp.Transaction) > 0:
		fmt.Fprintf(out, "Signed transaction: %s\n", crypto.EncodeBase58(resp.Transaction))
	default:
		for i, tx := range resp.Transactions {
			fmt.Fprintf(out, "Signed transaction %d: %s\n", i, crypto.EncodeBase58(tx))
		}
	}
	return nil
}
