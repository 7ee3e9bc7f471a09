package storage

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// PlayerRecord — сохраняемое состояние игрока
type PlayerRecord struct {
	Position  vec.Vec3Float `json:"position"`
	Velocity  vec.Vec3Float `json:"velocity"`
	Yaw       float64       `json:"yaw"`
	Pitch     float64       `json:"pitch"`
	Flying    bool          `json:"flying"`
	HP        int           `json:"hp"`
	Selected  int           `json:"selected"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ErrPlayerNotFound возвращается при удалении отсутствующей записи
var ErrPlayerNotFound = errors.New("игрок не найден")

// PlayerRepo сохраняет состояние игрока между запусками.
// Записи привязаны к строковому идентификатору игрока.
type PlayerRepo interface {
	// Save сохраняет запись игрока
	Save(ctx context.Context, playerID string, rec PlayerRecord) error

	// Load загружает запись. bool == false означает первый вход.
	Load(ctx context.Context, playerID string) (PlayerRecord, bool, error)

	// Delete удаляет запись (для тестов или сброса)
	Delete(ctx context.Context, playerID string) error

	Close() error
}
