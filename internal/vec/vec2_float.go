package vec

import "math"

// Vec2Float — горизонтальный вектор (x, z) с плавающей точкой
type Vec2Float struct {
	X, Z float64
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Z: v.Z + other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Z: v.Z * scalar}
}

// Forward возвращает направление взгляда по рыску в градусах
func Forward(yawDeg float64) Vec2Float {
	rad := yawDeg * math.Pi / 180
	return Vec2Float{X: math.Sin(rad), Z: math.Cos(rad)}
}

// Right возвращает направление вправо относительно рыска
func Right(yawDeg float64) Vec2Float {
	rad := yawDeg * math.Pi / 180
	return Vec2Float{X: math.Cos(rad), Z: -math.Sin(rad)}
}
