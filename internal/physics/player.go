package physics

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Ограничение наклона камеры в градусах
const MaxPitch = 89.0

// DefaultSensitivity — чувствительность мыши по умолчанию
const DefaultSensitivity = 0.2

// StepThreshold — горизонтальная скорость, выше которой слышны шаги
const StepThreshold = 0.05

// PlayerState — кинематическое состояние игрока
type PlayerState struct {
	Position vec.Vec3Float `json:"position"`
	Velocity vec.Vec3Float `json:"velocity"`
	Yaw      float64       `json:"yaw"`   // Поворот в градусах
	Pitch    float64       `json:"pitch"` // Наклон в градусах, [-89, 89]
	Grounded bool          `json:"grounded"`
	Flying   bool          `json:"flying"`
	InWater  bool          `json:"in_water"`
}

// NewPlayerState создаёт игрока в точке появления (0, 10, 0)
func NewPlayerState() *PlayerState {
	return &PlayerState{Position: vec.Vec3Float{X: 0, Y: 10, Z: 0}}
}

// Input — состояние клавиш управления на один тик
type Input struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Jump    bool `json:"jump"`
	Descend bool `json:"descend"`
	Sprint  bool `json:"sprint"`
}

// ApplyLook поворачивает камеру на смещение мыши
func (p *PlayerState) ApplyLook(dx, dy, sensitivity float64) {
	p.Yaw += dx * sensitivity
	p.Pitch = math.Max(-MaxPitch, math.Min(MaxPitch, p.Pitch+dy*sensitivity))
}

// StepTrigger сообщает, нужно ли проигрывать звук шагов. Состояние не меняет.
func StepTrigger(p *PlayerState) bool {
	return p.Grounded && (math.Abs(p.Velocity.X) > StepThreshold || math.Abs(p.Velocity.Z) > StepThreshold)
}

// UpdateWaterState отмечает, стоит ли игрок в воде
func UpdateWaterState(p *PlayerState, world BlockQuery) {
	t, ok := world.Get(p.Position.Round())
	p.InWater = ok && t == block.Water
}

// ChunkCoords возвращает чанк, в котором стоит игрок
func (p *PlayerState) ChunkCoords() vec.Vec2 {
	return vec.ChunkOf(int(math.Floor(p.Position.X)), int(math.Floor(p.Position.Z)))
}
