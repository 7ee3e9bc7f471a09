package physics

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// BlockQuery — доступ к миру на чтение, нужный физике
type BlockQuery interface {
	Get(pos vec.Vec3) (block.Type, bool)
	IsSolid(pos vec.Vec3) bool
}

// BoxCollider представляет простой прямоугольный коллайдер.
// Нулевые размеры означают точечный коллайдер.
type BoxCollider struct {
	Width  float64 // Ширина в блоках по X и Z
	Height float64 // Высота в блоках от ног
}

// PointCollider — коллайдер игрока по умолчанию: одна точка в позиции
var PointCollider = BoxCollider{}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(width, height float64) BoxCollider {
	return BoxCollider{Width: width, Height: height}
}

// GetCollisionPoints возвращает блоки, которые нужно проверить для позиции.
// Для точечного коллайдера это один блок под округлённой позицией.
func GetCollisionPoints(pos vec.Vec3Float, collider BoxCollider) []vec.Vec3 {
	if collider.Width <= 0 && collider.Height <= 0 {
		return []vec.Vec3{pos.Round()}
	}

	half := collider.Width / 2
	levels := int(math.Ceil(collider.Height))
	if levels < 1 {
		levels = 1
	}

	seen := make(map[vec.Vec3]struct{})
	points := make([]vec.Vec3, 0, 4*levels)
	for i := 0; i < levels; i++ {
		y := pos.Y + float64(i)
		for _, corner := range [][2]float64{{-half, -half}, {half, -half}, {-half, half}, {half, half}} {
			p := vec.Vec3Float{X: pos.X + corner[0], Y: y, Z: pos.Z + corner[1]}.Round()
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			points = append(points, p)
		}
	}
	return points
}

// CanMoveToPosition проверяет, может ли тело с коллайдером занять позицию.
// blocked сообщает, непроходим ли блок.
func CanMoveToPosition(newPos vec.Vec3Float, collider BoxCollider, blocked func(vec.Vec3) bool) bool {
	for _, point := range GetCollisionPoints(newPos, collider) {
		if blocked(point) {
			return false
		}
	}
	return true
}

// CheckCollision проверяет точку на пересечение с твёрдым блоком
func CheckCollision(pos vec.Vec3Float, world BlockQuery) bool {
	return world.IsSolid(pos.Round())
}
