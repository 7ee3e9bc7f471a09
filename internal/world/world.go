package world

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// ChunkObserver получает статистику генерации чанков (метрики)
type ChunkObserver interface {
	ChunkGenerated(coords vec.Vec2, blocks int, took time.Duration)
	ChunkCacheHit()
	WorldBlocks(count int)
}

// ChunkPublisher уведомляет подписчиков о готовых чанках (шина событий)
type ChunkPublisher interface {
	PublishChunkReady(ctx context.Context, coords vec.Vec2, biome string, blocks int)
}

// WorldManager владеет хранилищем блоков и кэшем сгенерированных чанков.
// Повторный запрос чанка возвращает тот же объект без повторной генерации.
type WorldManager struct {
	generator *WorldGenerator
	store     *Store

	chunks   map[vec.Vec2]*Chunk                   // Сгенерированные чанки
	restored map[vec.Vec2]struct{}                 // Чанки, пришедшие из сохранения
	pending  map[vec.Vec2]map[vec.Vec3]block.Type // Правки для ещё не сгенерированных чанков
	mu       sync.RWMutex

	observer  ChunkObserver
	publisher ChunkPublisher
	tracer    trace.Tracer
}

// NewWorldManager создаёт менеджер мира поверх генератора
func NewWorldManager(generator *WorldGenerator) *WorldManager {
	return &WorldManager{
		generator: generator,
		store:     NewStore(),
		chunks:    make(map[vec.Vec2]*Chunk),
		restored:  make(map[vec.Vec2]struct{}),
		pending:   make(map[vec.Vec2]map[vec.Vec3]block.Type),
		tracer:    otel.Tracer("voxel-sandbox/world"),
	}
}

// SetObserver устанавливает получателя статистики генерации
func (wm *WorldManager) SetObserver(observer ChunkObserver) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.observer = observer
}

// SetPublisher устанавливает публикатор событий о готовых чанках
func (wm *WorldManager) SetPublisher(publisher ChunkPublisher) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.publisher = publisher
}

// Store возвращает хранилище блоков мира
func (wm *WorldManager) Store() *Store {
	return wm.store
}

// Generator возвращает генератор мира
func (wm *WorldManager) Generator() *WorldGenerator {
	return wm.generator
}

// RequestChunk возвращает чанк, генерируя его при первом запросе.
// Генерация идёт без блокировки менеджера; готовый чанк устанавливается
// под блокировкой, его блоки попадают в хранилище одним слиянием.
func (wm *WorldManager) RequestChunk(ctx context.Context, coords vec.Vec2) *Chunk {
	wm.mu.RLock()
	chunk, exists := wm.chunks[coords]
	_, restored := wm.restored[coords]
	observer := wm.observer
	wm.mu.RUnlock()
	if exists {
		if observer != nil {
			observer.ChunkCacheHit()
		}
		return chunk
	}
	if restored {
		if chunk, ok := wm.installRestored(coords); ok {
			return chunk
		}
	}

	_, span := wm.tracer.Start(ctx, "world.GenerateChunk",
		trace.WithAttributes(attribute.Int("chunk.x", coords.X), attribute.Int("chunk.z", coords.Z)))
	defer span.End()
	started := time.Now()

	generated := wm.generator.GenerateChunk(coords)

	chunk, installed := wm.install(coords, generated)
	if !installed {
		return chunk // другой запрос успел раньше
	}

	took := time.Since(started)
	blocks := chunk.BlockCount()
	span.SetAttributes(attribute.String("chunk.biome", string(chunk.Biome)), attribute.Int("chunk.blocks", blocks))

	wm.mu.RLock()
	observer = wm.observer
	publisher := wm.publisher
	wm.mu.RUnlock()

	logging.GetWorldLogger().Debug("Чанк %v сгенерирован: биом=%s блоков=%d за %v", coords, chunk.Biome, blocks, took)
	if observer != nil {
		observer.ChunkGenerated(coords, blocks, took)
		observer.WorldBlocks(wm.store.Len())
	}
	if publisher != nil {
		publisher.PublishChunkReady(ctx, coords, string(chunk.Biome), blocks)
	}

	return chunk
}

// install кладёт сгенерированный чанк в кэш и хранилище. Если чанк уже
// есть (параллельный запрос или загрузка мира), возвращается существующий.
func (wm *WorldManager) install(coords vec.Vec2, chunk *Chunk) (*Chunk, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if existing, ok := wm.chunks[coords]; ok {
		return existing, false
	}
	if _, ok := wm.restored[coords]; ok {
		// Мир загрузили во время генерации: сохранение важнее рельефа
		return wm.restoreLocked(coords), false
	}

	// Отложенные правки соседей ложатся поверх рельефа
	if edits, ok := wm.pending[coords]; ok {
		chunk.applyEdits(edits)
		delete(wm.pending, coords)
	}

	wm.store.Merge(chunk.Blocks)
	wm.chunks[coords] = chunk
	wm.routeOverflow(chunk)
	return chunk, true
}

// installRestored собирает чанк из загруженного сохранения. false означает,
// что мир успели заменить и чанк нужно генерировать.
func (wm *WorldManager) installRestored(coords vec.Vec2) (*Chunk, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if existing, ok := wm.chunks[coords]; ok {
		return existing, true
	}
	if _, ok := wm.restored[coords]; !ok {
		return nil, false
	}
	return wm.restoreLocked(coords), true
}

func (wm *WorldManager) restoreLocked(coords vec.Vec2) *Chunk {
	chunk := wm.restoreChunk(coords)
	wm.chunks[coords] = chunk
	delete(wm.pending, coords) // сохранение уже содержит итоговое состояние
	return chunk
}

// routeOverflow раздаёт блоки деревьев, вышедшие за границу чанка.
// Готовым соседям они пишутся сразу, остальным откладываются; среди
// отложенных правок побеждает первая записавшая. Вызывается под wm.mu.
func (wm *WorldManager) routeOverflow(chunk *Chunk) {
	for target, edits := range chunk.Overflow {
		if neighbor, ok := wm.chunks[target]; ok {
			neighbor.applyEdits(edits)
			wm.store.Merge(edits)
			continue
		}

		queued, ok := wm.pending[target]
		if !ok {
			queued = make(map[vec.Vec3]block.Type, len(edits))
			wm.pending[target] = queued
		}
		for pos, t := range edits {
			if _, taken := queued[pos]; !taken {
				queued[pos] = t
			}
		}
	}
}

// restoreChunk собирает чанк из загруженных блоков без повторной генерации,
// чтобы рельеф не перезаписал правки игрока. Вызывается под wm.mu.
func (wm *WorldManager) restoreChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	chunk.Blocks = wm.store.ChunkBlocks(coords)

	startX, startZ := coords.Origin()
	for x := startX; x < startX+vec.ChunkSize; x++ {
		for z := startZ; z < startZ+vec.ChunkSize; z++ {
			chunk.Heights[vec.Vec2{X: x, Z: z}] = wm.generator.HeightAt(x, z)
		}
	}
	delete(wm.restored, coords)
	return chunk
}

// ChunkAt возвращает уже сгенерированный чанк без генерации
func (wm *WorldManager) ChunkAt(coords vec.Vec2) (*Chunk, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	chunk, ok := wm.chunks[coords]
	return chunk, ok
}

// IsGenerated проверяет, был ли чанк сгенерирован или восстановлен
func (wm *WorldManager) IsGenerated(coords vec.Vec2) bool {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	_, ok := wm.chunks[coords]
	return ok
}

// EnsureAround синхронно генерирует квадрат чанков радиуса radius вокруг центра
func (wm *WorldManager) EnsureAround(ctx context.Context, center vec.Vec2, radius int) {
	for _, coords := range center.Neighbors(radius) {
		wm.RequestChunk(ctx, coords)
	}
}

// ChunkCount возвращает количество сгенерированных чанков
func (wm *WorldManager) ChunkCount() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.chunks)
}

// PendingCount возвращает количество чанков с отложенными правками
func (wm *WorldManager) PendingCount() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.pending)
}

// Reset заменяет мир загруженными блоками. Чанки, в которых есть
// загруженные блоки, больше не генерируются, а собираются из хранилища.
func (wm *WorldManager) Reset(blocks map[vec.Vec3]block.Type) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.store.Reset(blocks)
	wm.chunks = make(map[vec.Vec2]*Chunk)
	wm.pending = make(map[vec.Vec2]map[vec.Vec3]block.Type)
	wm.restored = make(map[vec.Vec2]struct{})
	for pos := range blocks {
		wm.restored[pos.ChunkCoords()] = struct{}{}
	}

	logging.GetWorldLogger().Info("Мир заменён: блоков=%d чанков=%d", len(blocks), len(wm.restored))
}
