package world

import (
	"sync"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Chunk представляет сгенерированный участок мира размером 8x8 колонн
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире
	Biome  Biome    // Биом, выбранный при генерации

	// Blocks хранит блоки внутри площади чанка
	Blocks map[vec.Vec3]block.Type

	// Heights хранит высоту поверхности каждой колонны (ключ — глобальные x, z)
	Heights map[vec.Vec2]int

	// Overflow — блоки деревьев, вышедшие за границу чанка, по целевым чанкам
	Overflow map[vec.Vec2]map[vec.Vec3]block.Type

	Mu sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:   coords,
		Blocks:   make(map[vec.Vec3]block.Type),
		Heights:  make(map[vec.Vec2]int, vec.ChunkSize*vec.ChunkSize),
		Overflow: make(map[vec.Vec2]map[vec.Vec3]block.Type),
	}
}

// put записывает блок при генерации. Запись за пределами площади чанка
// не обрезается, а откладывается в Overflow целевого чанка.
func (c *Chunk) put(pos vec.Vec3, t block.Type) {
	if c.Coords.Contains(pos.X, pos.Z) {
		c.Blocks[pos] = t
		return
	}

	target := pos.ChunkCoords()
	edits, ok := c.Overflow[target]
	if !ok {
		edits = make(map[vec.Vec3]block.Type)
		c.Overflow[target] = edits
	}
	edits[pos] = t
}

// GetBlock возвращает блок чанка по глобальной координате
func (c *Chunk) GetBlock(pos vec.Vec3) (block.Type, bool) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	t, ok := c.Blocks[pos]
	return t, ok
}

// SurfaceHeight возвращает высоту поверхности колонны (x, z)
func (c *Chunk) SurfaceHeight(x, z int) (int, bool) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	h, ok := c.Heights[vec.Vec2{X: x, Z: z}]
	return h, ok
}

// applyEdits накладывает внешние правки поверх содержимого чанка
func (c *Chunk) applyEdits(edits map[vec.Vec3]block.Type) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	for pos, t := range edits {
		c.Blocks[pos] = t
	}
}

// BlocksCopy возвращает копию блоков чанка
func (c *Chunk) BlocksCopy() map[vec.Vec3]block.Type {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	result := make(map[vec.Vec3]block.Type, len(c.Blocks))
	for pos, t := range c.Blocks {
		result[pos] = t
	}
	return result
}

// BlockCount возвращает количество блоков в чанке
func (c *Chunk) BlockCount() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return len(c.Blocks)
}
