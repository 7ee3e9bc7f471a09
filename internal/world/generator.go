package world

import (
	"math/rand"

	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Biome представляет тип биома чанка
type Biome string

const (
	BiomeForest    Biome = "forest"
	BiomeDesert    Biome = "desert"
	BiomeMountains Biome = "mountains"
)

// Порядок важен: индекс биома выбирается первым числом потока чанка
var biomes = []Biome{BiomeForest, BiomeDesert, BiomeMountains}

// Константы генерации
const (
	ColumnDepth   = 10   // Глубина колонны под поверхностью
	CaveThreshold = 0.1  // Порог вырезания пещеры
	TreeChance    = 0.01 // Шанс дерева на колонну в лесу
	TrunkHeight   = 3    // Высота ствола
)

// WorldGenerator генерирует ландшафт мира
type WorldGenerator struct {
	Seed   int64           // Сид мира
	height util.HeightFunc // Функция высоты поверхности

	// randFor создаёт поток случайных чисел чанка; подменяется в тестах
	randFor func(coords vec.Vec2) *rand.Rand
}

// NewWorldGenerator создаёт новый генератор мира.
// Если height == nil, используется сумма синусоид.
func NewWorldGenerator(seed int64, height util.HeightFunc) *WorldGenerator {
	if height == nil {
		height = util.SineHeight{Seed: seed}
	}

	wg := &WorldGenerator{
		Seed:   seed,
		height: height,
	}
	wg.randFor = wg.chunkRand
	return wg
}

// chunkRand создаёт собственный поток чанка: сид выводится из сида мира и координат,
// поэтому содержимое не зависит от порядка генерации чанков
func (wg *WorldGenerator) chunkRand(coords vec.Vec2) *rand.Rand {
	chunkSeed := int64(vec.Hash2(wg.Seed, coords.X, coords.Z))
	return rand.New(rand.NewSource(chunkSeed))
}

// HeightAt возвращает высоту поверхности колонны
func (wg *WorldGenerator) HeightAt(x, z int) int {
	return wg.height.Height(x, z)
}

// GenerateChunk генерирует чанк по его координатам.
// Результат — чистая функция от сида, функции высоты и координат.
func (wg *WorldGenerator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	rng := wg.randFor(coords)

	// Одно число на чанк, до любых колонн
	chunk.Biome = biomes[rng.Intn(len(biomes))]

	startX, startZ := coords.Origin()
	for x := startX; x < startX+vec.ChunkSize; x++ {
		for z := startZ; z < startZ+vec.ChunkSize; z++ {
			h := wg.height.Height(x, z)
			chunk.Heights[vec.Vec2{X: x, Z: z}] = h

			// Снизу вверх; число тянется только для ячеек ниже h-2
			for y := h - ColumnDepth; y <= h; y++ {
				if y < h-2 && rng.Float64() < CaveThreshold {
					continue // пещера
				}
				chunk.put(vec.Vec3{X: x, Y: y, Z: z}, LayerBlock(chunk.Biome, y, h))
			}

			if chunk.Biome == BiomeForest && rng.Float64() < TreeChance {
				wg.placeTree(chunk, vec.Vec3{X: x, Y: h + 1, Z: z})
			}
		}
	}

	return chunk
}

// LayerBlock возвращает блок слоя y в колонне с поверхностью h
func LayerBlock(biome Biome, y, h int) block.Type {
	switch {
	case y == h:
		if biome == BiomeForest {
			return block.Grass
		}
		return block.Sand
	case y > h-3:
		return block.Dirt
	default:
		return block.Stone
	}
}

// placeTree ставит ствол из трёх блоков дерева и слой листвы 3x3 над ним.
// Листва перезаписывает всё, что уже стоит на её высоте.
func (wg *WorldGenerator) placeTree(chunk *Chunk, root vec.Vec3) {
	for i := 0; i < TrunkHeight; i++ {
		chunk.put(vec.Vec3{X: root.X, Y: root.Y + i, Z: root.Z}, block.Wood)
	}

	canopyY := root.Y + TrunkHeight
	for lx := -1; lx <= 1; lx++ {
		for lz := -1; lz <= 1; lz++ {
			chunk.put(vec.Vec3{X: root.X + lx, Y: canopyY, Z: root.Z + lz}, block.Leaves)
		}
	}
}
