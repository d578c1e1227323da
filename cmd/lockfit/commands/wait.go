package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockfit/internal/callback"
	"lockfit/internal/domain"
	"lockfit/internal/services/pending"
)

var (
	wait        bool
	waitTimeout time.Duration
)

func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&wait, "wait", true, "run the callback listener and wait for the wallet's answer")
	cmd.Flags().DurationVar(&waitTimeout, "timeout", 5*time.Minute, "how long to wait for the wallet")
}

// await serves callbacks until t resolves. Without --wait it returns at
// once with ok false.
func await(cmd *cobra.Command, t *pending.Ticket) (resp domain.Response, ok bool, err error) {
	if !wait {
		fmt.Fprintf(cmd.OutOrStdout(), "Request %s sent; pass the wallet's callback to \"lockfit callback\".\n", t.ID)
		return domain.Response{}, false, nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), waitTimeout)
	defer cancel()

	srv := callback.NewServer(appCtx.Config.Callback.Listen, appCtx.Wallet)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe(ctx) }()

	fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for the wallet (callbacks on %s)...\n", appCtx.Config.Callback.Listen)

	select {
	case <-t.Done():
	case <-ctx.Done():
	case err := <-srvErr:
		// Serve only returns early on failure.
		if err == nil {
			err = errors.New("stopped unexpectedly")
		}
		return domain.Response{}, false, fmt.Errorf("callback listener: %w", err)
	}

	resp, err = t.Wait(ctx)
	cancel()
	if lerr := <-srvErr; lerr != nil {
		log.Debug().Err(lerr).Msg("Callback listener stopped")
	}
	return resp, err == nil, err
}
