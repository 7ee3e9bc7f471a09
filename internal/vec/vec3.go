package vec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec3 представляет целочисленные координаты блока в мире
type Vec3 struct {
	X int
	Y int
	Z int
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// String возвращает ключ вида "x,y,z", используемый в файле сохранения
func (v Vec3) String() string {
	return strconv.Itoa(v.X) + "," + strconv.Itoa(v.Y) + "," + strconv.Itoa(v.Z)
}

// ParseVec3 разбирает строку "x,y,z"
func ParseVec3(s string) (Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("некорректные координаты %q: ожидалось 3 компоненты", s)
	}

	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Vec3{}, fmt.Errorf("некорректные координаты %q: %w", s, err)
		}
		out[i] = n
	}

	return Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// ChunkCoords возвращает координаты чанка, которому принадлежит блок
func (v Vec3) ChunkCoords() Vec2 {
	return ChunkOf(v.X, v.Z)
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// ToFloat преобразует координаты блока в вектор с плавающей точкой
func (v Vec3) ToFloat() Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3Float) Mul(scalar float64) Vec3Float {
	return Vec3Float{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Round округляет координаты до ближайшего блока.
// Половины округляются к чётному, как при выборке блока под точкой.
func (v Vec3Float) Round() Vec3 {
	return Vec3{
		X: int(math.RoundToEven(v.X)),
		Y: int(math.RoundToEven(v.Y)),
		Z: int(math.RoundToEven(v.Z)),
	}
}

