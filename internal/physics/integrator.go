package physics

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// Физические константы, подобранные под фиксированный шаг тика
const (
	Gravity             = -0.012
	TerminalVelocity    = -0.5
	WalkSpeed           = 0.15
	SprintSpeed         = 0.25
	JumpForce           = 0.22
	WaterDrag           = 0.4
	WaterDamping        = 0.8
	SwimVelocity        = 0.05
	FlySpeed            = 0.2
	FlyDecay            = 0.5
	Friction            = 0.85
	WorldFloor          = 1.0
	FallDamageThreshold = -0.4
)

// Config переключает исправления известных особенностей движения.
// Нулевое значение воспроизводит исходное поведение: проход сквозь
// блоки по горизонтали и недостижимая проверка урона от падения.
type Config struct {
	StrictCollision   bool        // Проверять блоки по осям X, Z, Y
	CorrectFallDamage bool        // Сравнивать скорость до обнуления
	Collider          BoxCollider // Коллайдер игрока для строгого режима
}

// TickResult описывает события одного тика
type TickResult struct {
	Landed         bool    // Игрок коснулся опоры в этом тике
	FallDamage     bool    // Приземление было слишком жёстким
	ImpactVelocity float64 // Вертикальная скорость в момент касания
}

// Integrator интегрирует движение игрока с фиксированным шагом
type Integrator struct {
	cfg Config
}

// NewIntegrator создаёт интегратор с конфигурацией
func NewIntegrator(cfg Config) *Integrator {
	return &Integrator{cfg: cfg}
}

// Config возвращает конфигурацию интегратора
func (ig *Integrator) Config() Config {
	return ig.cfg
}

// Tick продвигает игрока на один шаг. Диагональный ввод не нормализуется.
func (ig *Integrator) Tick(p *PlayerState, in Input, world BlockQuery) TickResult {
	speed := WalkSpeed
	if in.Sprint {
		speed = SprintSpeed
	}

	// Сопротивление воды действует до гравитации
	if p.InWater {
		speed *= WaterDrag
		p.Velocity.Y *= WaterDamping
	}

	var intent vec.Vec2Float
	forward, right := vec.Forward(p.Yaw), vec.Right(p.Yaw)
	if in.Forward {
		intent = intent.Add(forward)
	}
	if in.Back {
		intent = intent.Add(forward.Mul(-1))
	}
	if in.Left {
		intent = intent.Add(right.Mul(-1))
	}
	if in.Right {
		intent = intent.Add(right)
	}

	// Инерция: экспоненциальное затухание прежней скорости
	p.Velocity.X = intent.X*speed + p.Velocity.X*Friction
	p.Velocity.Z = intent.Z*speed + p.Velocity.Z*Friction

	if !p.Flying {
		if p.InWater && in.Jump {
			p.Velocity.Y = SwimVelocity
		} else if p.Grounded && in.Jump {
			p.Velocity.Y = JumpForce
			p.Grounded = false
		}
		p.Velocity.Y = math.Max(TerminalVelocity, p.Velocity.Y+Gravity)
	} else {
		switch {
		case in.Jump:
			p.Velocity.Y = FlySpeed
		case in.Descend:
			p.Velocity.Y = -FlySpeed
		default:
			p.Velocity.Y *= FlyDecay
		}
	}

	wasGrounded := p.Grounded
	next := p.Position.Add(p.Velocity)
	var result TickResult

	if ig.cfg.StrictCollision && world != nil {
		next = ig.resolveAxes(p, next, world, &result)
	}

	if next.Y < WorldFloor {
		impact := p.Velocity.Y
		next.Y = WorldFloor
		p.Velocity.Y = 0
		p.Grounded = true
		ig.land(&result, impact, p.Velocity.Y)
	}

	p.Position = next
	if result.Landed && wasGrounded {
		result.Landed = false
	}
	return result
}

// land фиксирует касание опоры. Без исправления проверка урона видит уже
// обнулённую скорость и не срабатывает никогда.
func (ig *Integrator) land(result *TickResult, impact, after float64) {
	result.Landed = true
	checked := after
	if ig.cfg.CorrectFallDamage {
		checked = impact
	}
	if checked < FallDamageThreshold {
		result.FallDamage = true
		result.ImpactVelocity = impact
	}
}

// resolveAxes проверяет перемещение по осям X, Z, затем Y.
// Заблокированная горизонтальная ось сохраняет прежнюю координату и теряет скорость.
func (ig *Integrator) resolveAxes(p *PlayerState, next vec.Vec3Float, world BlockQuery, result *TickResult) vec.Vec3Float {
	blocked := world.IsSolid
	pos := p.Position

	if candidate := (vec.Vec3Float{X: next.X, Y: pos.Y, Z: pos.Z}); CanMoveToPosition(candidate, ig.cfg.Collider, blocked) {
		pos.X = next.X
	} else {
		p.Velocity.X = 0
	}

	if candidate := (vec.Vec3Float{X: pos.X, Y: pos.Y, Z: next.Z}); CanMoveToPosition(candidate, ig.cfg.Collider, blocked) {
		pos.Z = next.Z
	} else {
		p.Velocity.Z = 0
	}

	candidate := vec.Vec3Float{X: pos.X, Y: next.Y, Z: pos.Z}
	if CanMoveToPosition(candidate, ig.cfg.Collider, blocked) {
		pos.Y = next.Y
		return pos
	}

	impact := p.Velocity.Y
	p.Velocity.Y = 0
	if impact < 0 {
		// Встаём на верх блока под ногами
		pos.Y = float64(candidate.Round().Y) + 1
		p.Grounded = true
		ig.land(result, impact, p.Velocity.Y)
	}
	return pos
}
