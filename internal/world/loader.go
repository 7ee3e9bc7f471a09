package world

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// LoaderObserver получает счётчики фоновой загрузки (метрики)
type LoaderObserver interface {
	LoaderDropped()
	LoaderFailed()
}

// ReadyBuffer — ёмкость канала готовых чанков
const ReadyBuffer = 64

// Loader генерирует чанки в фоне с одним слотом на лету.
// Пока слот занят, новые запросы отбрасываются, а не ставятся в очередь.
type Loader struct {
	manager  *WorldManager
	busy     atomic.Bool
	ready    chan vec.Vec2
	dropped  atomic.Uint64
	failures atomic.Uint64
	observer LoaderObserver

	// request выполняет генерацию; подменяется в тестах
	request func(ctx context.Context, coords vec.Vec2) *Chunk
}

// NewLoader создаёт фоновый загрузчик поверх менеджера мира
func NewLoader(manager *WorldManager) *Loader {
	return &Loader{
		manager: manager,
		ready:   make(chan vec.Vec2, ReadyBuffer),
		request: manager.RequestChunk,
	}
}

// SetObserver устанавливает получателя счётчиков
func (l *Loader) SetObserver(observer LoaderObserver) {
	l.observer = observer
}

// TryLoad запускает генерацию чанка, если слот свободен.
// Возвращает false, если запрос отброшен.
func (l *Loader) TryLoad(coords vec.Vec2) bool {
	if !l.busy.CompareAndSwap(false, true) {
		l.dropped.Add(1)
		if l.observer != nil {
			l.observer.LoaderDropped()
		}
		return false
	}

	go l.run(coords)
	return true
}

// run выполняет генерацию; паника перехватывается на границе воркера
func (l *Loader) run(coords vec.Vec2) {
	defer l.busy.Store(false)

	if err := l.generate(coords); err != nil {
		l.failures.Add(1)
		if l.observer != nil {
			l.observer.LoaderFailed()
		}
		logging.GetWorldLogger().Error("Фоновая загрузка чанка %v не удалась: %v", coords, err)
		return
	}

	select {
	case l.ready <- coords:
	default:
		logging.GetWorldLogger().Warn("Канал готовых чанков переполнен, уведомление о %v пропущено", coords)
	}
}

func (l *Loader) generate(coords vec.Vec2) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника при генерации: %v", r)
		}
	}()

	if chunk := l.request(context.Background(), coords); chunk == nil {
		return fmt.Errorf("генератор вернул пустой чанк")
	}
	return nil
}

// Busy сообщает, занят ли слот загрузки
func (l *Loader) Busy() bool {
	return l.busy.Load()
}

// Ready возвращает канал координат готовых чанков
func (l *Loader) Ready() <-chan vec.Vec2 {
	return l.ready
}

// DrainReady забирает все готовые координаты без блокировки
func (l *Loader) DrainReady() []vec.Vec2 {
	var done []vec.Vec2
	for {
		select {
		case coords := <-l.ready:
			done = append(done, coords)
		default:
			return done
		}
	}
}

// Dropped возвращает количество отброшенных запросов
func (l *Loader) Dropped() uint64 {
	return l.dropped.Load()
}

// Failures возвращает количество неудачных загрузок
func (l *Loader) Failures() uint64 {
	return l.failures.Load()
}
