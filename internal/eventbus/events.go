package eventbus

import (
	"context"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// Источник и типы событий песочницы
const (
	SourceSandbox = "sandbox"

	TypeChunkReady      = "ChunkReady"
	TypeBlockEdited     = "BlockEdited"
	TypeCommandExecuted = "CommandExecuted"
)

// ChunkReadyEvent — чанк сгенерирован и слит в хранилище
type ChunkReadyEvent struct {
	X      int    `json:"x"`
	Z      int    `json:"z"`
	Biome  string `json:"biome"`
	Blocks int    `json:"blocks"`
}

// BlockEditedEvent — игрок сломал или поставил блок
type BlockEditedEvent struct {
	Action string   `json:"action"`
	Pos    vec.Vec3 `json:"pos"`
	Type   string   `json:"type"`
}

// CommandExecutedEvent — выполнена команда консоли
type CommandExecutedEvent struct {
	Line  string `json:"line"`
	Error string `json:"error,omitempty"`
}

// Publisher публикует события песочницы в шину. Ошибки шины не
// прерывают игру и только пишутся в лог.
type Publisher struct {
	bus EventBus
}

// NewPublisher создаёт публикатор поверх шины
func NewPublisher(bus EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) publish(ctx context.Context, eventType string, priority int, payload interface{}) {
	ev, err := NewEnvelope(SourceSandbox, eventType, payload)
	if err != nil {
		logging.Warn("Событие %s не создано: %v", eventType, err)
		return
	}
	ev.Priority = priority
	if err := p.bus.Publish(ctx, ev); err != nil {
		logging.Warn("Событие %s не опубликовано: %v", eventType, err)
	}
}

// PublishChunkReady сообщает о готовом чанке
func (p *Publisher) PublishChunkReady(ctx context.Context, coords vec.Vec2, biome string, blocks int) {
	p.publish(ctx, TypeChunkReady, PriorityLow, ChunkReadyEvent{X: coords.X, Z: coords.Z, Biome: biome, Blocks: blocks})
}

// PublishBlockEdited сообщает о правке мира. Правки не отбрасываются
// при заполненном буфере.
func (p *Publisher) PublishBlockEdited(ctx context.Context, action string, pos vec.Vec3, blockType string) {
	p.publish(ctx, TypeBlockEdited, PriorityHigh, BlockEditedEvent{Action: action, Pos: pos, Type: blockType})
}

// PublishCommandExecuted сообщает о выполненной команде
func (p *Publisher) PublishCommandExecuted(ctx context.Context, line string, cmdErr error) {
	ev := CommandExecutedEvent{Line: line}
	if cmdErr != nil {
		ev.Error = cmdErr.Error()
	}
	p.publish(ctx, TypeCommandExecuted, PriorityLow, ev)
}
