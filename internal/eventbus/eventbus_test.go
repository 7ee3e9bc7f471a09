package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

func TestMemoryBus_FilteredDelivery(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var got []ChunkReadyEvent
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeChunkReady}}, func(_ context.Context, ev *Envelope) {
		var payload ChunkReadyEvent
		if ev.Decode(&payload) == nil {
			mu.Lock()
			got = append(got, payload)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	pub := NewPublisher(bus)
	pub.PublishChunkReady(context.Background(), vec.Vec2{X: 2, Z: -1}, "forest", 700)
	pub.PublishBlockEdited(context.Background(), "break", vec.Vec3{X: 1, Y: 2, Z: 3}, "stone")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, ChunkReadyEvent{X: 2, Z: -1, Biome: "forest", Blocks: 700}, got[0])
	mu.Unlock()

	assert.Eventually(t, func() bool { return bus.Metrics().Published == 2 }, time.Second, 5*time.Millisecond)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	calls := make(chan struct{}, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {
		calls <- struct{}{}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope(SourceSandbox, TypeCommandExecuted, CommandExecutedEvent{Line: "/fly"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	select {
	case <-calls:
		t.Fatal("отписанный обработчик не должен вызываться")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_OrderedDelivery(t *testing.T) {
	bus := NewMemoryBus(64)

	var got []string
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeCommandExecuted}}, func(_ context.Context, ev *Envelope) {
		var payload CommandExecutedEvent
		assert.NoError(t, ev.Decode(&payload))
		got = append(got, payload.Line)
	})
	require.NoError(t, err)

	pub := NewPublisher(bus)
	want := []string{"/fly", "/tp 1 2 3", "/stats", "/help"}
	for _, line := range want {
		pub.PublishCommandExecuted(context.Background(), line, nil)
	}
	bus.Close() // дожидается доставки принятых событий

	assert.Equal(t, want, got)
	assert.Equal(t, uint64(len(want)), bus.Metrics().Consumed)
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()

	block := make(chan struct{})
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { <-block })
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		ev, err := NewEnvelope(SourceSandbox, TypeChunkReady, ChunkReadyEvent{X: i})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	assert.Positive(t, bus.Metrics().Dropped)
	close(block)
}

func TestMemoryBus_CloseRejectsPublish(t *testing.T) {
	bus := NewMemoryBus(1)
	bus.Close()
	bus.Close()

	ev, err := NewEnvelope(SourceSandbox, TypeChunkReady, ChunkReadyEvent{})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestNewEnvelope(t *testing.T) {
	a, err := NewEnvelope(SourceSandbox, TypeBlockEdited, BlockEditedEvent{Action: "place"})
	require.NoError(t, err)
	b, err := NewEnvelope(SourceSandbox, TypeBlockEdited, BlockEditedEvent{Action: "place"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36, "UUID в текстовом виде")
	assert.JSONEq(t, `{"action":"place","pos":{"X":0,"Y":0,"Z":0},"type":""}`, string(a.Payload))
}

func TestRegisterMetrics(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(bus, reg))

	ev, err := NewEnvelope(SourceSandbox, TypeChunkReady, ChunkReadyEvent{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	count, err := testutil.GatherAndCount(reg, "eventbus_messages_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Error(t, RegisterMetrics(bus, reg), "повторная регистрация отклоняется")
}
