package app

import (
	"fmt"
	"io"
	"os"

	"lockfit/internal/domain"
	"lockfit/internal/store"
)

// openSecureStore builds the secure store backend selected by cfg. The
// returned closer is nil when the backend holds no resources.
func openSecureStore(cfg *Config, passphrase string) (domain.SecureStore, io.Closer, error) {
	if cfg.Storage.Driver == "memory" {
		return store.NewMemoryStore(), nil, nil
	}
	if passphrase == "" {
		return nil, nil, fmt.Errorf("passphrase required (-p or LOCKFIT_PASSPHRASE)")
	}

	switch cfg.Storage.Driver {
	case "sqlite":
		s, err := store.OpenSQLiteSecureStore(cfg.StoragePath(), passphrase)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "file":
		if err := os.MkdirAll(cfg.StoragePath(), 0o700); err != nil {
			return nil, nil, err
		}
		return store.NewFileSecureStore(cfg.StoragePath(), passphrase), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
