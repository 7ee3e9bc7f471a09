package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/logging"
)

// ErrUnknownBackend возвращается для неизвестного имени бэкенда
var ErrUnknownBackend = errors.New("неизвестный бэкенд хранения")

// OpenWorld создаёт хранилище мира по имени бэкенда
func OpenWorld(cfg config.StorageConfig) (WorldPersister, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileWorldStorage(cfg.Path), nil
	case config.BackendBadger:
		return NewBadgerWorldStorage(cfg.Path)
	case config.BackendSQLite:
		return NewSQLiteWorldStorage(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// OpenPlayers создаёт репозиторий игроков. Если Redis недоступен,
// используется репозиторий в памяти.
func OpenPlayers(ctx context.Context, cfg config.StorageConfig) (PlayerRepo, error) {
	switch cfg.PlayerBackend {
	case config.PlayerBackendMemory, "":
		return NewMemoryPlayerRepo(), nil
	case config.PlayerBackendRedis:
		rc := DefaultRedisConfig()
		if cfg.RedisAddr != "" {
			rc.Addr = cfg.RedisAddr
		}
		repo, err := NewRedisPlayerRepo(ctx, rc)
		if err != nil {
			logging.GetStorageLogger().Warn("Redis недоступен (%v), игроки хранятся в памяти", err)
			return NewMemoryPlayerRepo(), nil
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.PlayerBackend)
	}
}
