package world

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

type recordingObserver struct {
	mu        sync.Mutex
	generated []vec.Vec2
	hits      int
	blocks    int
}

func (o *recordingObserver) ChunkGenerated(coords vec.Vec2, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generated = append(o.generated, coords)
}

func (o *recordingObserver) ChunkCacheHit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *recordingObserver) WorldBlocks(count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blocks = count
}

type recordingPublisher struct {
	mu    sync.Mutex
	ready []vec.Vec2
}

func (p *recordingPublisher) PublishChunkReady(_ context.Context, coords vec.Vec2, _ string, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = append(p.ready, coords)
}

func TestWorldManager_RequestChunkMemoised(t *testing.T) {
	ctx := context.Background()
	wm := NewWorldManager(NewWorldGenerator(888, nil))
	observer := &recordingObserver{}
	publisher := &recordingPublisher{}
	wm.SetObserver(observer)
	wm.SetPublisher(publisher)

	first := wm.RequestChunk(ctx, vec.Vec2{X: 0, Z: 0})
	second := wm.RequestChunk(ctx, vec.Vec2{X: 0, Z: 0})

	assert.Same(t, first, second, "повторный запрос возвращает кэшированный чанк")
	assert.Equal(t, []vec.Vec2{{X: 0, Z: 0}}, observer.generated, "генерация выполняется один раз")
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, wm.Store().Len(), observer.blocks)
	assert.Equal(t, []vec.Vec2{{X: 0, Z: 0}}, publisher.ready)

	for pos, b := range first.BlocksCopy() {
		got, ok := wm.Store().Get(pos)
		require.True(t, ok, "блок %v должен попасть в хранилище", pos)
		assert.Equal(t, b, got)
	}
	assert.True(t, wm.IsGenerated(vec.Vec2{X: 0, Z: 0}))
	_, ok := wm.ChunkAt(vec.Vec2{X: 5, Z: 5})
	assert.False(t, ok, "ChunkAt не генерирует")
}

func TestWorldManager_EnsureAround(t *testing.T) {
	wm := NewWorldManager(NewWorldGenerator(1, nil))
	wm.EnsureAround(context.Background(), vec.Vec2{X: -1, Z: 2}, 1)

	assert.Equal(t, 9, wm.ChunkCount())
	assert.True(t, wm.IsGenerated(vec.Vec2{X: -2, Z: 1}))
	assert.True(t, wm.IsGenerated(vec.Vec2{X: 0, Z: 3}))
}

func TestWorldManager_OverflowCommutes(t *testing.T) {
	ctx := context.Background()
	a := vec.Vec2{X: 0, Z: 0}
	b := vec.Vec2{X: 1, Z: 0}

	forward := NewWorldManager(newZeroGenerator(3))
	forward.RequestChunk(ctx, a)
	assert.Positive(t, forward.PendingCount(), "листва соседей ждёт генерации")
	forward.RequestChunk(ctx, b)

	backward := NewWorldManager(newZeroGenerator(3))
	backward.RequestChunk(ctx, b)
	backward.RequestChunk(ctx, a)

	assert.Equal(t, forward.Store().Snapshot(), backward.Store().Snapshot(),
		"итоговое содержимое не зависит от порядка генерации")

	// Листва чанка a в площади b видна и в хранилище, и в кэше b
	chunkB, ok := forward.ChunkAt(b)
	require.True(t, ok)
	ax, _ := b.Origin()
	found := false
	for pos, t2 := range chunkB.BlocksCopy() {
		if pos.X == ax && t2 == block.Leaves {
			found = true
			stored, _ := forward.Store().Get(pos)
			assert.Equal(t, block.Leaves, stored)
		}
	}
	assert.True(t, found, "на границе b должна быть листва деревьев из a")
}

func TestWorldManager_OverflowStaysOutOfUngeneratedChunks(t *testing.T) {
	ctx := context.Background()
	wg := newZeroGenerator(3)
	wm := NewWorldManager(wg)

	origin := vec.Vec2{X: 0, Z: 0}
	wm.RequestChunk(ctx, origin)
	require.Positive(t, wm.PendingCount(), "листва деревьев у границы ждёт соседей")

	assertFootprintEmpty := func(coords vec.Vec2) {
		ox, oz := coords.Origin()
		for x := ox; x < ox+vec.ChunkSize; x++ {
			for z := oz; z < oz+vec.ChunkSize; z++ {
				h := wg.HeightAt(x, z)
				for y := h - 12; y <= h+8; y++ {
					pos := vec.Vec3{X: x, Y: y, Z: z}
					if !assert.False(t, wm.Store().Has(pos), "чанк %v не сгенерирован, блок %v", coords, pos) {
						return
					}
				}
			}
		}
	}
	for _, n := range []vec.Vec2{{X: 1, Z: 0}, {X: -1, Z: 0}, {X: 0, Z: 1}, {X: 0, Z: -1}} {
		assertFootprintEmpty(n)
	}
	for pos := range wm.Store().Snapshot() {
		assert.Equal(t, origin, pos.ChunkCoords(), "блок %v вне сгенерированных чанков", pos)
	}

	east := vec.Vec2{X: 1, Z: 0}
	wm.RequestChunk(ctx, east)
	for pos := range wm.Store().Snapshot() {
		c := pos.ChunkCoords()
		assert.True(t, c == origin || c == east, "блок %v вне сгенерированных чанков", pos)
	}
	for _, n := range []vec.Vec2{{X: 2, Z: 0}, {X: 1, Z: 1}, {X: 1, Z: -1}, {X: -1, Z: 0}, {X: 0, Z: 1}, {X: 0, Z: -1}} {
		assertFootprintEmpty(n)
	}
}

func TestWorldManager_ResetKeepsLoadedEdits(t *testing.T) {
	ctx := context.Background()
	wg := NewWorldGenerator(888, nil)
	wm := NewWorldManager(wg)
	coords := vec.Vec2{X: 0, Z: 0}
	wm.RequestChunk(ctx, coords)

	h := wg.HeightAt(2, 3)
	top := vec.Vec3{X: 2, Y: h, Z: 3}
	_, removed := wm.Store().Remove(top)
	require.True(t, removed)
	placed := vec.Vec3{X: 2, Y: h + 7, Z: 3}
	wm.Store().Set(placed, block.Stone)

	saved := wm.Store().Snapshot()
	wm.Reset(saved)
	assert.Equal(t, 0, wm.ChunkCount(), "после загрузки кэш пуст")

	chunk := wm.RequestChunk(ctx, coords)
	assert.False(t, wm.Store().Has(top), "сломанный блок не возвращается после загрузки")
	got, ok := wm.Store().Get(placed)
	require.True(t, ok)
	assert.Equal(t, block.Stone, got)
	assert.Equal(t, saved, wm.Store().Snapshot())

	_, inChunk := chunk.GetBlock(top)
	assert.False(t, inChunk)
	surface, ok := chunk.SurfaceHeight(2, 3)
	require.True(t, ok)
	assert.Equal(t, h, surface)

	// Чанки без сохранённых блоков генерируются как обычно
	other := wm.RequestChunk(ctx, vec.Vec2{X: 4, Z: 4})
	assert.Positive(t, other.BlockCount())
}

func TestWorldManager_ConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	wm := NewWorldManager(NewWorldGenerator(5, nil))

	var wg sync.WaitGroup
	chunks := make([]*Chunk, 8)
	for i := range chunks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chunks[i] = wm.RequestChunk(ctx, vec.Vec2{X: 2, Z: 2})
		}(i)
	}
	wg.Wait()

	for _, c := range chunks {
		assert.Same(t, chunks[0], c)
	}
	assert.Equal(t, 1, wm.ChunkCount())
}
