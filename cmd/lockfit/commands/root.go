package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockfit/internal/app"
	"lockfit/internal/linking"
)

var (
	home       string
	configPath string
	passphrase string
	storage    string
	listen     string
	opener     string
	logLevel   string

	appCtx *app.App
)

func Execute() error {
	root := &cobra.Command{
		Use:          "lockfit",
		Short:        "Connect to a Phantom wallet over deep links and request signatures",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".lockfit")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if configPath == "" {
				configPath = filepath.Join(home, "config.yaml")
			}

			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.Home = home
			applyFlags(cmd, cfg)
			setupLogging(cfg.Log.Level)

			if passphrase == "" {
				passphrase = os.Getenv("LOCKFIT_PASSPHRASE")
			}
			lo, err := linking.New(cfg.Opener, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			a, err := app.New(cfg, passphrase, lo)
			if err != nil {
				return err
			}
			appCtx = a

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			_, err = appCtx.Wallet.Start(ctx)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.lockfit)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting stored keys (or LOCKFIT_PASSPHRASE)")
	root.PersistentFlags().StringVar(&storage, "storage", "", "secure store: file, sqlite or memory")
	root.PersistentFlags().StringVar(&listen, "listen", "", "callback listener address, e.g. 127.0.0.1:8976")
	root.PersistentFlags().StringVar(&opener, "opener", "", "how to open wallet links: auto, browser or print")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		resetCmd(),
		connectCmd(),
		callbackCmd(),
		listenCmd(),
		signMessageCmd(),
		signTxCmd(),
		signAllCmd(),
		signSendCmd(),
		disconnectCmd(),
		logoutCmd(),
		statusCmd(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

// applyFlags overrides file settings with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *app.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.Storage.Driver = storage
	}
	if flags.Changed("listen") {
		cfg.Callback.Listen = listen
	}
	if flags.Changed("opener") {
		cfg.Opener = opener
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
