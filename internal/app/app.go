package app

import (
	"io"

	"lockfit/internal/domain"
	"lockfit/internal/services/identity"
	"lockfit/internal/services/wallet"
	"lockfit/internal/store"
)

// App bundles the stores and services used by the CLI.
type App struct {
	Config   *Config
	Identity *identity.Service
	Wallet   *wallet.Service

	closer io.Closer
}

// New constructs the dependency graph from cfg. opener receives every
// outbound wallet link.
func New(cfg *Config, passphrase string, opener domain.LinkOpener) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kv, closer, err := openSecureStore(cfg, passphrase)
	if err != nil {
		return nil, err
	}

	ids := identity.New(store.NewIdentityStore(kv))
	w := wallet.New(ids, store.NewSessionStore(kv), opener, wallet.Config{
		WalletBase:       cfg.WalletBase(),
		RedirectBase:     cfg.RedirectBase(),
		Cluster:          cfg.Wallet.Cluster,
		AppURL:           cfg.Wallet.AppURL,
		HandshakeTimeout: cfg.Wallet.HandshakeTimeout,
		PendingTimeout:   cfg.Wallet.PendingTimeout,
	})

	return &App{
		Config:   cfg,
		Identity: ids,
		Wallet:   w,
		closer:   closer,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
