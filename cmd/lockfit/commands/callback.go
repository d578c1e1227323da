package commands

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockfit/internal/callback"
)

// callbackCmd is what the OS runs for lockfit:// URLs. A running listener
// owns any pending request, so the URL is forwarded there first; otherwise
// it is handled here, which can still complete a connect.
func callbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "callback <url>",
		Short: "Deliver a wallet callback URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := callback.NewClient(appCtx.Config.Callback.Listen)

			var reply callback.Reply
			if client.Healthy(ctx) {
				r, err := client.Forward(ctx, args[0])
				if err != nil {
					return err
				}
				reply = r
			} else {
				log.Debug().Msg("No callback listener running; handling locally")
				res, err := appCtx.Wallet.HandleURL(ctx, args[0])
				reply = callback.NewReply(res, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(reply); err != nil {
				return err
			}
			if reply.Error != "" {
				return errors.New(reply.Error)
			}
			return nil
		},
	}
}

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Run the loopback callback listener until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callback.NewServer(appCtx.Config.Callback.Listen, appCtx.Wallet).ListenAndServe(cmd.Context())
		},
	}
}
