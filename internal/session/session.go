package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/metrics"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/storage"
	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// DefaultPlayerID — идентификатор единственного игрока песочницы
const DefaultPlayerID = "player"

// Options задаёт зависимости сессии. Пустые поля заменяются значениями по умолчанию.
type Options struct {
	Config        *config.Config
	World         storage.WorldPersister
	Players       storage.PlayerRepo
	Metrics       *metrics.Metrics
	Bus           eventbus.EventBus
	Screenshotter Screenshotter
	PlayerID      string
}

// Session — контекст одной игры: игрок, мир, хранилища и консоль.
// Все изменения состояния проходят под одной блокировкой, поэтому
// отладочный API и цикл тиков не пересекаются.
type Session struct {
	mu sync.Mutex

	cfg        *config.Config
	player     *physics.PlayerState
	integrator *physics.Integrator
	inventory  *interaction.Inventory
	hp         int
	gameTime   float64
	ticks      uint64

	manager *world.WorldManager
	loader  *world.Loader

	persister storage.WorldPersister
	players   storage.PlayerRepo
	playerID  string

	metrics       *metrics.Metrics
	bus           eventbus.EventBus
	ownBus        bool
	events        *eventbus.Publisher
	screenshotter Screenshotter

	cmdMu    sync.Mutex
	commands map[string]CommandFunc
	history  []string
}

// New собирает сессию и синхронно генерирует чанки вокруг точки появления
func New(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	height, err := util.NewHeightFunc(cfg.World.HeightMode, cfg.World.Seed)
	if err != nil {
		return nil, fmt.Errorf("функция высоты: %w", err)
	}

	s := &Session{
		cfg:           cfg,
		player:        physics.NewPlayerState(),
		inventory:     interaction.NewInventory(),
		hp:            interaction.MaxHP,
		persister:     opts.World,
		players:       opts.Players,
		playerID:      opts.PlayerID,
		metrics:       opts.Metrics,
		bus:           opts.Bus,
		screenshotter: opts.Screenshotter,
	}
	s.integrator = physics.NewIntegrator(physics.Config{
		StrictCollision:   cfg.Physics.StrictCollision,
		CorrectFallDamage: cfg.Physics.CorrectFallDamage,
		Collider:          physics.PointCollider,
	})

	if s.persister == nil {
		s.persister = storage.NewFileWorldStorage(cfg.Storage.Path)
	}
	if s.players == nil {
		s.players = storage.NewMemoryPlayerRepo()
	}
	if s.playerID == "" {
		s.playerID = DefaultPlayerID
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.bus == nil {
		s.bus = eventbus.NewMemoryBus(256)
		s.ownBus = true
		if err := eventbus.RegisterMetrics(s.bus, s.metrics.Registry); err != nil {
			logging.Warn("Метрики шины событий не зарегистрированы: %v", err)
		}
	}
	if s.screenshotter == nil {
		s.screenshotter = FileScreenshotter{Dir: "."}
	}
	s.events = eventbus.NewPublisher(s.bus)

	s.manager = world.NewWorldManager(world.NewWorldGenerator(cfg.World.Seed, height))
	s.manager.SetObserver(s.metrics)
	s.manager.SetPublisher(s.events)

	s.loader = world.NewLoader(s.manager)
	s.loader.SetObserver(s.metrics)

	s.registerBuiltins()

	s.manager.EnsureAround(ctx, s.player.ChunkCoords(), cfg.World.LoadRadius)
	logging.Info("🌍 Сессия создана: seed=%d, режим высоты=%s, чанков=%d",
		cfg.World.Seed, cfg.World.HeightMode, s.manager.ChunkCount())
	return s, nil
}

// Close освобождает хранилища и собственную шину событий
func (s *Session) Close() error {
	var errs []error
	if err := s.persister.Close(); err != nil {
		errs = append(errs, fmt.Errorf("хранилище мира: %w", err))
	}
	if err := s.players.Close(); err != nil {
		errs = append(errs, fmt.Errorf("хранилище игроков: %w", err))
	}
	if s.ownBus {
		s.bus.Close()
	}
	return errors.Join(errs...)
}

// Manager возвращает менеджер мира
func (s *Session) Manager() *world.WorldManager {
	return s.manager
}

// Loader возвращает фоновый загрузчик чанков
func (s *Session) Loader() *world.Loader {
	return s.loader
}

// Metrics возвращает метрики сессии
func (s *Session) Metrics() *metrics.Metrics {
	return s.metrics
}

// Bus возвращает шину событий сессии
func (s *Session) Bus() eventbus.EventBus {
	return s.bus
}

// Tick выполняет один шаг симуляции
func (s *Session) Tick(ctx context.Context, in physics.Input) physics.TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, coords := range s.loader.DrainReady() {
		logging.Debug("Чанк %v готов", coords)
	}

	if coords := s.player.ChunkCoords(); !s.manager.IsGenerated(coords) {
		s.loader.TryLoad(coords)
	}

	store := s.manager.Store()
	physics.UpdateWaterState(s.player, store)
	result := s.integrator.Tick(s.player, in, store)
	if result.FallDamage {
		s.applyFallDamage(result.ImpactVelocity)
	}

	s.gameTime += s.cfg.Game.TimeStep
	s.ticks++
	s.metrics.Tick()
	return result
}

// applyFallDamage снимает здоровье. При нуле игрок возрождается в точке появления.
func (s *Session) applyFallDamage(impact float64) {
	s.hp -= s.cfg.Physics.FallDamageAmount
	logging.Info("Ouch! Fall Damage! скорость=%.2f hp=%d", impact, s.hp)
	if s.hp > 0 {
		return
	}

	logging.Warn("Здоровье исчерпано, возрождение в точке появления")
	spawn := physics.NewPlayerState()
	spawn.Yaw, spawn.Pitch = s.player.Yaw, s.player.Pitch
	s.player = spawn
	s.hp = interaction.MaxHP
}

// Look поворачивает камеру на смещение мыши
func (s *Session) Look(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.ApplyLook(dx, dy, physics.DefaultSensitivity)
}

// Edit ломает или ставит блок под прицелом. Без попадания возвращает nil.
func (s *Session) Edit(ctx context.Context, action interaction.Action) *interaction.EditResult {
	s.mu.Lock()
	result := interaction.Raycast(s.player.Position, s.player.Pitch, s.player.Yaw,
		s.manager.Store(), action, s.inventory.Current())
	s.mu.Unlock()

	if result == nil {
		return nil
	}

	s.metrics.Edit(result.Name)
	s.metrics.WorldBlocks(s.manager.Store().Len())
	s.events.PublishBlockEdited(ctx, result.Name, result.Pos, string(result.Type))
	logging.Debug("Правка %s %s в %v", result.Name, result.Type, result.Pos)
	return result
}

// SelectSlot выбирает ячейку панели. Индекс вне диапазона игнорируется.
func (s *Session) SelectSlot(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Select(index)
}

// Environment возвращает цвет неба и облака для текущего игрового времени
func (s *Session) Environment() world.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return world.EnvironmentState(s.gameTime)
}

// StepTrigger сообщает, нужно ли проигрывать звук шагов
func (s *Session) StepTrigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return physics.StepTrigger(s.player)
}

// Snapshot — состояние игрока для API, консоли и снимков
type Snapshot struct {
	Player   physics.PlayerState `json:"player"`
	HP       int                 `json:"hp"`
	MaxHP    int                 `json:"max_hp"`
	Slots    []block.Type        `json:"slots"`
	Selected int                 `json:"selected"`
	Block    block.Type          `json:"block"`
	Chunk    vec.Vec2            `json:"chunk"`
	Target   *vec.Vec3           `json:"target,omitempty"` // Блок под прицелом
	GameTime float64             `json:"game_time"`
	Ticks    uint64              `json:"ticks"`
}

// PlayerSnapshot возвращает копию состояния игрока
func (s *Session) PlayerSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	var target *vec.Vec3
	if pos, ok := interaction.Target(s.player.Position, s.player.Pitch, s.player.Yaw, s.manager.Store()); ok {
		target = &pos
	}
	return Snapshot{
		Player:   *s.player,
		HP:       s.hp,
		MaxHP:    interaction.MaxHP,
		Slots:    append([]block.Type(nil), s.inventory.Slots...),
		Selected: s.inventory.Selected,
		Block:    s.inventory.Current(),
		Chunk:    s.player.ChunkCoords(),
		Target:   target,
		GameTime: s.gameTime,
		Ticks:    s.ticks,
	}
}

// Teleport переносит игрока в точку, скорость не меняется
func (s *Session) Teleport(pos vec.Vec3Float) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Position = pos
}

// ToggleFly переключает режим полёта и возвращает новое значение
func (s *Session) ToggleFly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Flying = !s.player.Flying
	return s.player.Flying
}

// SaveWorld сохраняет мир и состояние игрока
func (s *Session) SaveWorld(ctx context.Context) error {
	s.mu.Lock()
	blocks := s.manager.Store().Snapshot()
	rec := storage.PlayerRecord{
		Position: s.player.Position,
		Velocity: s.player.Velocity,
		Yaw:      s.player.Yaw,
		Pitch:    s.player.Pitch,
		Flying:   s.player.Flying,
		HP:       s.hp,
		Selected: s.inventory.Selected,
	}
	s.mu.Unlock()

	if err := s.persister.Save(ctx, blocks); err != nil {
		return fmt.Errorf("сохранение мира: %w", err)
	}
	rec.UpdatedAt = timeNow()
	if err := s.players.Save(ctx, s.playerID, rec); err != nil {
		return fmt.Errorf("сохранение игрока: %w", err)
	}

	logging.Info("💾 Мир сохранён: %d блоков", len(blocks))
	return nil
}

// LoadWorld заменяет мир сохранением. Повреждённое сохранение даёт пустой
// мир, который заполняется генерацией, и ошибка только пишется в лог.
func (s *Session) LoadWorld(ctx context.Context) error {
	blocks, err := s.persister.Load(ctx)
	if errors.Is(err, storage.ErrCorruptSave) {
		logging.Error("Сохранение повреждено, мир начинается заново: %v", err)
	} else if err != nil {
		return fmt.Errorf("загрузка мира: %w", err)
	}

	rec, found, err := s.players.Load(ctx, s.playerID)
	if err != nil {
		logging.Warn("Состояние игрока не загружено: %v", err)
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.Reset(blocks)
	if found {
		s.player.Position = rec.Position
		s.player.Velocity = rec.Velocity
		s.player.Yaw, s.player.Pitch = rec.Yaw, rec.Pitch
		s.player.Flying = rec.Flying
		if rec.HP > 0 {
			s.hp = rec.HP
		}
		s.inventory.Select(rec.Selected)
	}
	s.manager.EnsureAround(ctx, s.player.ChunkCoords(), s.cfg.World.LoadRadius)
	s.metrics.WorldBlocks(s.manager.Store().Len())

	logging.Info("📂 Мир загружен: %d блоков", len(blocks))
	return nil
}
