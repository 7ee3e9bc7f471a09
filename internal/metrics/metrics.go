package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// Namespace — префикс всех метрик песочницы
const Namespace = "sandbox"

// Metrics содержит Prometheus-метрики сессии в собственном регистре,
// поэтому несколько сессий (и тесты) не конфликтуют при регистрации.
//
// Метрики:
// * chunks_generated_total, chunk_generation_seconds, chunk_cache_hits_total
// * loader_dropped_total, loader_failures_total
// * ticks_total, world_blocks
// * edits_total{action}, commands_total{command}
type Metrics struct {
	Registry *prometheus.Registry

	chunksGenerated prometheus.Counter
	chunkDuration   prometheus.Histogram
	cacheHits       prometheus.Counter
	loaderDropped   prometheus.Counter
	loaderFailures  prometheus.Counter
	ticks           prometheus.Counter
	worldBlocks     prometheus.Gauge
	edits           *prometheus.CounterVec
	commands        *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их вместе с метриками рантайма Go
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		chunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "chunk_generation_seconds",
			Help:      "Длительность генерации одного чанка.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chunk_cache_hits_total",
			Help:      "Запросы чанков, обслуженные из кэша.",
		}),
		loaderDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loader_dropped_total",
			Help:      "Фоновые запросы, отброшенные из-за занятого слота.",
		}),
		loaderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loader_failures_total",
			Help:      "Фоновые генерации, завершившиеся ошибкой.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ticks_total",
			Help:      "Выполненные тики симуляции.",
		}),
		worldBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "world_blocks",
			Help:      "Количество блоков в хранилище мира.",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "edits_total",
			Help:      "Правки мира лучом по типу действия.",
		}, []string{"action"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Команды консоли по имени.",
		}, []string{"command"}),
	}

	m.Registry.MustRegister(
		m.chunksGenerated, m.chunkDuration, m.cacheHits,
		m.loaderDropped, m.loaderFailures,
		m.ticks, m.worldBlocks, m.edits, m.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ChunkGenerated учитывает сгенерированный чанк
func (m *Metrics) ChunkGenerated(_ vec.Vec2, _ int, took time.Duration) {
	m.chunksGenerated.Inc()
	m.chunkDuration.Observe(took.Seconds())
}

// ChunkCacheHit учитывает попадание в кэш чанков
func (m *Metrics) ChunkCacheHit() {
	m.cacheHits.Inc()
}

// WorldBlocks обновляет размер хранилища
func (m *Metrics) WorldBlocks(count int) {
	m.worldBlocks.Set(float64(count))
}

// LoaderDropped учитывает отброшенный фоновый запрос
func (m *Metrics) LoaderDropped() {
	m.loaderDropped.Inc()
}

// LoaderFailed учитывает неудачную фоновую генерацию
func (m *Metrics) LoaderFailed() {
	m.loaderFailures.Inc()
}

// Tick учитывает тик симуляции
func (m *Metrics) Tick() {
	m.ticks.Inc()
}

// Edit учитывает правку мира
func (m *Metrics) Edit(action string) {
	m.edits.WithLabelValues(action).Inc()
}

// Command учитывает выполненную команду консоли
func (m *Metrics) Command(name string) {
	m.commands.WithLabelValues(name).Inc()
}

// Handler возвращает HTTP-обработчик /metrics для регистра сессии
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
