package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryPlayerRepo реализует PlayerRepo в памяти.
// Используется по умолчанию и как fallback, когда Redis недоступен.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemoryPlayerRepo struct {
	mu   sync.RWMutex
	data map[string]PlayerRecord
}

// NewMemoryPlayerRepo создает новый репозиторий игроков в памяти
func NewMemoryPlayerRepo() *MemoryPlayerRepo {
	return &MemoryPlayerRepo{
		data: make(map[string]PlayerRecord),
	}
}

func validPlayerID(playerID string) error {
	if playerID == "" {
		return fmt.Errorf("недействительный идентификатор игрока: %q", playerID)
	}
	return nil
}

// Save сохраняет запись игрока в памяти
func (r *MemoryPlayerRepo) Save(ctx context.Context, playerID string, rec PlayerRecord) error {
	if err := validPlayerID(playerID); err != nil {
		return err
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[playerID] = rec
	return nil
}

// Load загружает запись игрока из памяти
func (r *MemoryPlayerRepo) Load(ctx context.Context, playerID string) (PlayerRecord, bool, error) {
	if err := validPlayerID(playerID); err != nil {
		return PlayerRecord{}, false, err
	}

	select {
	case <-ctx.Done():
		return PlayerRecord{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.data[playerID]
	return rec, exists, nil
}

// Delete удаляет запись игрока
func (r *MemoryPlayerRepo) Delete(ctx context.Context, playerID string) error {
	if err := validPlayerID(playerID); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[playerID]; !exists {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	delete(r.data, playerID)
	return nil
}

// Count возвращает количество сохраненных записей (для отладки)
func (r *MemoryPlayerRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close ничего не освобождает
func (r *MemoryPlayerRepo) Close() error {
	return nil
}
