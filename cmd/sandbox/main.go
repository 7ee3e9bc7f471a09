package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-sandbox/internal/api"
	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/observability"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/session"
	"github.com/annel0/voxel-sandbox/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML конфигурации (или SANDBOX_CONFIG)")
		maxTicks   = flag.Int("ticks", 0, "остановиться после N тиков, 0 — до сигнала")
		withAPI    = flag.Bool("api", false, "включить отладочный REST API")
		loadSave   = flag.Bool("load", false, "загрузить сохранение при старте")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	if *withAPI {
		cfg.API.Enabled = true
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	if err := logging.InitDefaultLogger(logging.Options{
		Component:    "sandbox",
		Dir:          cfg.Log.Dir,
		File:         cfg.Log.File,
		ConsoleLevel: level,
		FileLevel:    logging.INFO,
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.GetLoggerManager().SetDir(cfg.Log.Dir)
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск песочницы: seed=%d backend=%s", cfg.World.Seed, cfg.Storage.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.Service)
	if err != nil {
		logging.Error("Телеметрия отключена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer shutdownTelemetry(context.Background())

	// === ХРАНИЛИЩА ===
	worldStore, err := storage.OpenWorld(cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища мира: %v", err)
	}
	players, err := storage.OpenPlayers(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища игроков: %v", err)
	}

	bus := eventbus.NewMemoryBus(1024)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Логирование событий недоступно: %v", err)
	}

	sess, err := session.New(ctx, session.Options{
		Config:  cfg,
		World:   worldStore,
		Players: players,
		Bus:     bus,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания сессии: %v", err)
	}
	defer sess.Close()
	if err := eventbus.RegisterMetrics(bus, sess.Metrics().Registry); err != nil {
		logging.Warn("Метрики шины событий не зарегистрированы: %v", err)
	}

	if *loadSave {
		if err := sess.LoadWorld(ctx); err != nil {
			logging.Error("Загрузка сохранения: %v", err)
		}
	}

	// === REST API ===
	var server *api.RestServer
	if cfg.API.Enabled {
		server = api.NewRestServer(sess, api.Config{
			Addr:    cfg.API.ListenAddr(),
			Service: cfg.Telemetry.Service,
		})
		if err := server.Start(); err != nil {
			logging.Error("❌ Ошибка запуска REST API: %v", err)
			server = nil
		}
	}

	run(ctx, sess, cfg.Game.TickRate, *maxTicks, readLines(os.Stdin))

	// === GRACEFUL SHUTDOWN ===
	if server != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Stop(stopCtx); err != nil {
			logging.Error("❌ Ошибка остановки REST API: %v", err)
		}
		cancel()
	}
	logging.Info("👋 Песочница остановлена")
}

// run крутит тики с частотой tickRate и применяет строки консоли между тиками
func run(ctx context.Context, sess *session.Session, tickRate, maxTicks int, lines <-chan string) {
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	var (
		input physics.Input
		ticks int
	)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				lines = nil // stdin закрыт, продолжаем без консоли
				continue
			}
			input = handleLine(ctx, sess, line, input)
		case <-ticker.C:
			sess.Tick(ctx, input)
			if sess.StepTrigger() {
				logging.Trace("👣 шаги")
			}
			ticks++
			if maxTicks > 0 && ticks >= maxTicks {
				return
			}
		}
	}
}

// readLines читает консоль построчно в фоне
func readLines(f *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
