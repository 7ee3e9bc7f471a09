package interaction

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Action — действие над блоком под прицелом
type Action int

const (
	ActionNone Action = iota
	ActionBreak
	ActionPlace
)

// String возвращает имя действия
func (a Action) String() string {
	switch a {
	case ActionBreak:
		return "break"
	case ActionPlace:
		return "place"
	default:
		return "none"
	}
}

// Параметры луча
const (
	RayStep    = 0.1 // Шаг выборки
	RaySamples = 49  // Выборки d = 1..49 шагов, дальность меньше 5 блоков
)

// EditableWorld — мир, который можно менять лучом
type EditableWorld interface {
	Has(pos vec.Vec3) bool
	Set(pos vec.Vec3, t block.Type)
	Remove(pos vec.Vec3) (block.Type, bool)
}

// EditResult описывает выполненную правку
type EditResult struct {
	Action Action     `json:"-"`
	Name   string     `json:"action"`
	Pos    vec.Vec3   `json:"pos"`
	Type   block.Type `json:"type"`
}

// Direction возвращает единичный вектор взгляда по наклону и повороту в градусах
func Direction(pitch, yaw float64) vec.Vec3Float {
	rx, ry := pitch*math.Pi/180, yaw*math.Pi/180
	return vec.Vec3Float{
		X: math.Sin(ry) * math.Cos(rx),
		Y: math.Sin(rx),
		Z: math.Cos(ry) * math.Cos(rx),
	}
}

// Raycast идёт вдоль взгляда шагами по 0.1 и действует на первый занятый блок.
// Ломание удаляет блок, установка ставит selected на шаг ближе к игроку.
// Без попадания возвращает nil.
func Raycast(origin vec.Vec3Float, pitch, yaw float64, world EditableWorld, action Action, selected block.Type) *EditResult {
	dir := Direction(pitch, yaw)

	for i := 1; i <= RaySamples; i++ {
		sample := origin.Add(dir.Mul(float64(i) * RayStep))
		hit := sample.Round()
		if !world.Has(hit) {
			continue
		}

		switch action {
		case ActionBreak:
			removed, _ := world.Remove(hit)
			return &EditResult{Action: ActionBreak, Name: ActionBreak.String(), Pos: hit, Type: removed}
		case ActionPlace:
			target := sample.Sub(dir.Mul(RayStep)).Round()
			world.Set(target, selected)
			return &EditResult{Action: ActionPlace, Name: ActionPlace.String(), Pos: target, Type: selected}
		default:
			return nil
		}
	}
	return nil
}

// Target возвращает первый занятый блок под прицелом без изменений
func Target(origin vec.Vec3Float, pitch, yaw float64, world EditableWorld) (vec.Vec3, bool) {
	dir := Direction(pitch, yaw)
	for i := 1; i <= RaySamples; i++ {
		hit := origin.Add(dir.Mul(float64(i) * RayStep)).Round()
		if world.Has(hit) {
			return hit, true
		}
	}
	return vec.Vec3{}, false
}
