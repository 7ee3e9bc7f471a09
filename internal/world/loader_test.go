package world

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// heightFunc — высота из замыкания
type heightFunc func(x, z int) int

func (f heightFunc) Height(x, z int) int { return f(x, z) }

var _ util.HeightFunc = heightFunc(nil)

// returnsWithin проверяет, что вызов fn завершается за timeout
func returnsWithin(t *testing.T, timeout time.Duration, fn func()) bool {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

type countingLoaderObserver struct {
	dropped, failed int
}

func (o *countingLoaderObserver) LoaderDropped() { o.dropped++ }
func (o *countingLoaderObserver) LoaderFailed()  { o.failed++ }

func TestLoader_LoadsInBackground(t *testing.T) {
	wm := NewWorldManager(NewWorldGenerator(888, nil))
	loader := NewLoader(wm)
	coords := vec.Vec2{X: 1, Z: -1}

	require.True(t, loader.TryLoad(coords))

	select {
	case got := <-loader.Ready():
		assert.Equal(t, coords, got)
	case <-time.After(5 * time.Second):
		t.Fatal("чанк не загрузился")
	}

	assert.True(t, wm.IsGenerated(coords))
	assert.Eventually(t, func() bool { return !loader.Busy() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, loader.DrainReady())
}

func TestLoader_DropsWhileBusy(t *testing.T) {
	wm := NewWorldManager(NewWorldGenerator(1, nil))
	loader := NewLoader(wm)
	observer := &countingLoaderObserver{}
	loader.SetObserver(observer)

	release := make(chan struct{})
	loader.request = func(ctx context.Context, coords vec.Vec2) *Chunk {
		<-release
		return wm.RequestChunk(ctx, coords)
	}

	require.True(t, loader.TryLoad(vec.Vec2{X: 0, Z: 0}))
	assert.False(t, loader.TryLoad(vec.Vec2{X: 1, Z: 0}), "второй запрос отбрасывается, пока слот занят")
	assert.Equal(t, uint64(1), loader.Dropped())
	assert.Equal(t, 1, observer.dropped)

	close(release)
	assert.Eventually(t, func() bool { return !loader.Busy() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []vec.Vec2{{X: 0, Z: 0}}, loader.DrainReady())
	assert.False(t, wm.IsGenerated(vec.Vec2{X: 1, Z: 0}), "отброшенный запрос не ставится в очередь")
}

func TestLoader_RecoversFromPanic(t *testing.T) {
	wm := NewWorldManager(NewWorldGenerator(1, nil))
	loader := NewLoader(wm)
	loader.request = func(context.Context, vec.Vec2) *Chunk {
		panic("сломанный генератор")
	}

	require.True(t, loader.TryLoad(vec.Vec2{X: 9, Z: 9}))
	assert.Eventually(t, func() bool { return loader.Failures() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !loader.Busy() }, time.Second, 5*time.Millisecond)

	assert.Empty(t, loader.DrainReady())
	assert.False(t, wm.IsGenerated(vec.Vec2{X: 9, Z: 9}))

	// Слот освобождён, следующий запрос принимается
	loader.request = wm.RequestChunk
	assert.True(t, loader.TryLoad(vec.Vec2{X: 0, Z: 0}))
}

func TestLoader_GeneratorPanicKeepsWorldResponsive(t *testing.T) {
	sine := util.SineHeight{Seed: 1}
	height := heightFunc(func(x, z int) int {
		if x >= 80 {
			panic("высота недоступна")
		}
		return sine.Height(x, z)
	})
	wm := NewWorldManager(NewWorldGenerator(1, height))
	loader := NewLoader(wm)

	require.True(t, loader.TryLoad(vec.Vec2{X: 10, Z: 0}))
	assert.Eventually(t, func() bool { return loader.Failures() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !loader.Busy() }, time.Second, 5*time.Millisecond)

	require.True(t, returnsWithin(t, 2*time.Second, func() {
		assert.False(t, wm.IsGenerated(vec.Vec2{X: 10, Z: 0}))
		assert.NotNil(t, wm.RequestChunk(context.Background(), vec.Vec2{X: 0, Z: 0}))
	}), "менеджер мира должен отвечать после сбоя генерации")
	assert.True(t, wm.IsGenerated(vec.Vec2{X: 0, Z: 0}))
	assert.Empty(t, loader.DrainReady())
}

func TestLoader_GenerationDoesNotBlockQueries(t *testing.T) {
	sine := util.SineHeight{Seed: 2}
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	height := heightFunc(func(x, z int) int {
		if x >= 24 {
			once.Do(func() { close(entered) })
			<-release
		}
		return sine.Height(x, z)
	})
	wm := NewWorldManager(NewWorldGenerator(2, height))
	wm.RequestChunk(context.Background(), vec.Vec2{X: 0, Z: 0})
	loader := NewLoader(wm)

	require.True(t, loader.TryLoad(vec.Vec2{X: 3, Z: 3}))
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("фоновая генерация не началась")
	}

	assert.True(t, returnsWithin(t, 200*time.Millisecond, func() {
		assert.True(t, wm.IsGenerated(vec.Vec2{X: 0, Z: 0}))
		assert.False(t, wm.IsGenerated(vec.Vec2{X: 3, Z: 3}))
		_, ok := wm.ChunkAt(vec.Vec2{X: 0, Z: 0})
		assert.True(t, ok)
	}), "запросы тика не ждут фоновую генерацию")

	close(release)
	select {
	case got := <-loader.Ready():
		assert.Equal(t, vec.Vec2{X: 3, Z: 3}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("чанк не загрузился")
	}
	assert.True(t, wm.IsGenerated(vec.Vec2{X: 3, Z: 3}))
}
