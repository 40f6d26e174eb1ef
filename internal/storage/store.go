package storage

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/devpairs/internal/config"
	"github.com/rohankatakam/devpairs/internal/errors"
)

// Open returns the store selected by cfg. Storage type "none" (or empty)
// returns a nil Store and no error.
func Open(cfg config.StorageConfig, logger *logrus.Logger) (Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	switch strings.ToLower(cfg.Type) {
	case "", "none":
		return nil, nil
	case "sqlite":
		store, err := NewSQLiteStore(cfg.Path, logger)
		if err != nil {
			return nil, errors.StorageError(err, "open sqlite store").WithContext("path", cfg.Path)
		}
		return store, nil
	case "bolt":
		store, err := NewBoltStore(cfg.Path, logger)
		if err != nil {
			return nil, errors.StorageError(err, "open bolt store").WithContext("path", cfg.Path)
		}
		return store, nil
	case "postgres":
		store, err := NewPostgresStore(cfg.PostgresDSN, cfg.PostgresDriver, logger)
		if err != nil {
			return nil, errors.StorageError(err, "open postgres store").WithContext("driver", cfg.PostgresDriver)
		}
		return store, nil
	default:
		return nil, errors.ConfigErrorf("unknown storage type %q", cfg.Type)
	}
}
