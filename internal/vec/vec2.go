package vec

// ChunkSize — размер чанка по осям X и Z в блоках
const ChunkSize = 8

// Vec2 представляет координаты чанка на горизонтальной плоскости (X, Z)
type Vec2 struct {
	X, Z int
}

// ChunkOf возвращает координаты чанка, содержащего колонну (x, z)
func ChunkOf(x, z int) Vec2 {
	return Vec2{X: FloorDiv(x, ChunkSize), Z: FloorDiv(z, ChunkSize)}
}

// Origin возвращает глобальные координаты угла чанка (минимальные x и z)
func (v Vec2) Origin() (int, int) {
	return v.X * ChunkSize, v.Z * ChunkSize
}

// Contains проверяет, попадает ли колонна (x, z) в площадь чанка
func (v Vec2) Contains(x, z int) bool {
	ox, oz := v.Origin()
	return x >= ox && x < ox+ChunkSize && z >= oz && z < oz+ChunkSize
}

// Neighbors возвращает чанки в квадрате radius вокруг текущего, включая его самого
func (v Vec2) Neighbors(radius int) []Vec2 {
	result := make([]Vec2, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			result = append(result, Vec2{X: v.X + dx, Z: v.Z + dz})
		}
	}
	return result
}

// FloorDiv делит с округлением вниз (b > 0), в том числе для отрицательных a
func FloorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}
