package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации песочницы
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Game      GameConfig      `yaml:"game"`
}

type WorldConfig struct {
	Seed       int64  `yaml:"seed"`
	HeightMode string `yaml:"height_mode"` // sine | perlin
	LoadRadius int    `yaml:"load_radius"` // Радиус синхронной генерации при старте, в чанках
}

type PhysicsConfig struct {
	StrictCollision   bool `yaml:"strict_collision"`
	CorrectFallDamage bool `yaml:"correct_fall_damage"`
	FallDamageAmount  int  `yaml:"fall_damage_amount"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend"` // file | badger | sqlite
	Path          string `yaml:"path"`
	PlayerBackend string `yaml:"player_backend"` // memory | redis
	RedisAddr     string `yaml:"redis_addr"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Port    int    `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Service string `yaml:"service"`
}

type GameConfig struct {
	TickRate int     `yaml:"tick_rate"` // Тиков в секунду
	TimeStep float64 `yaml:"time_step"` // Приращение игрового времени за тик
}

// Бэкенды хранения
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"

	PlayerBackendMemory = "memory"
	PlayerBackendRedis  = "redis"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("некорректная конфигурация")

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:       888,
			HeightMode: "sine",
			LoadRadius: 1,
		},
		Physics: PhysicsConfig{
			FallDamageAmount: 2,
		},
		Storage: StorageConfig{
			Backend:       BackendFile,
			Path:          "world.json",
			PlayerBackend: PlayerBackendMemory,
			RedisAddr:     "localhost:6379",
		},
		Log: LogConfig{
			Dir:   ".",
			File:  "game_x_log.txt",
			Level: "info",
		},
		API: APIConfig{
			Addr: "127.0.0.1",
		},
		Telemetry: TelemetryConfig{
			Service: "voxel-sandbox",
		},
		Game: GameConfig{
			TickRate: 60,
			TimeStep: 1.0 / 60.0,
		},
	}
}

// GetAPIPort возвращает порт отладочного API с поддержкой fallback значений
func (a *APIConfig) GetAPIPort() int {
	return getPortWithEnvFallback(a.Port, "SANDBOX_API_PORT", 8088)
}

// ListenAddr возвращает адрес для http.Server
func (a *APIConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", a.Addr, a.GetAPIPort())
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV SANDBOX_CONFIG; без файла возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SANDBOX_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var problems []string

	switch c.World.HeightMode {
	case "", "sine", "perlin":
	default:
		problems = append(problems, fmt.Sprintf("world.height_mode %q", c.World.HeightMode))
	}
	if c.World.LoadRadius < 0 {
		problems = append(problems, "world.load_radius < 0")
	}

	switch c.Storage.Backend {
	case BackendFile, BackendBadger, BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("storage.backend %q", c.Storage.Backend))
	}
	if c.Storage.Path == "" {
		problems = append(problems, "storage.path пуст")
	}

	switch c.Storage.PlayerBackend {
	case PlayerBackendMemory, PlayerBackendRedis:
	default:
		problems = append(problems, fmt.Sprintf("storage.player_backend %q", c.Storage.PlayerBackend))
	}

	if c.Physics.FallDamageAmount < 0 {
		problems = append(problems, "physics.fall_damage_amount < 0")
	}
	if c.Game.TickRate <= 0 {
		problems = append(problems, "game.tick_rate <= 0")
	}
	if c.Game.TimeStep <= 0 {
		problems = append(problems, "game.time_step <= 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}
