package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/voxel-sandbox/internal/logging"
)

// RedisPlayerRepo хранит записи игроков в Redis в виде JSON
type RedisPlayerRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей, 0 — без ограничения
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "sandbox:player:",
		TTL:       24 * time.Hour,
	}
}

// NewRedisPlayerRepo подключается к Redis и проверяет соединение
func NewRedisPlayerRepo(ctx context.Context, config *RedisConfig) (*RedisPlayerRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Connected to Redis at %s", config.Addr)
	return newRedisPlayerRepo(client, config), nil
}

func newRedisPlayerRepo(client *redis.Client, config *RedisConfig) *RedisPlayerRepo {
	return &RedisPlayerRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}
}

func (r *RedisPlayerRepo) key(playerID string) string {
	return r.keyPrefix + playerID
}

// Save сохраняет запись игрока
func (r *RedisPlayerRepo) Save(ctx context.Context, playerID string, rec PlayerRecord) error {
	if err := validPlayerID(playerID); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err := r.client.Set(ctx, r.key(playerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// Load получает запись игрока
func (r *RedisPlayerRepo) Load(ctx context.Context, playerID string) (PlayerRecord, bool, error) {
	if err := validPlayerID(playerID); err != nil {
		return PlayerRecord{}, false, err
	}

	data, err := r.client.Get(ctx, r.key(playerID)).Bytes()
	if err == redis.Nil {
		return PlayerRecord{}, false, nil // Первый вход
	} else if err != nil {
		return PlayerRecord{}, false, fmt.Errorf("failed to get player: %w", err)
	}

	var rec PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PlayerRecord{}, false, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return rec, true, nil
}

// Delete удаляет запись игрока
func (r *RedisPlayerRepo) Delete(ctx context.Context, playerID string) error {
	if err := validPlayerID(playerID); err != nil {
		return err
	}

	n, err := r.client.Del(ctx, r.key(playerID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisPlayerRepo) Close() error {
	return r.client.Close()
}
