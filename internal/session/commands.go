package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/metrics"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// HistoryLimit — сколько последних команд хранит консоль
const HistoryLimit = 100

var (
	// ErrUnknownCommand возвращается для незарегистрированной команды
	ErrUnknownCommand = errors.New("неизвестная команда")
	// ErrInvalidArgs возвращается при некорректных аргументах команды
	ErrInvalidArgs = errors.New("некорректные аргументы команды")
)

var timeNow = time.Now

// CommandFunc обрабатывает команду консоли. args не включают имя команды.
type CommandFunc func(ctx context.Context, s *Session, args []string) (string, error)

// RegisterCommand добавляет команду консоли, например из модов.
// Имя указывается со слешем: "/give". Повторная регистрация заменяет обработчик.
func (s *Session) RegisterCommand(name string, fn CommandFunc) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	s.commands[strings.ToLower(name)] = fn
	logging.Debug("Mod System: Registering %s", name)
}

// Commands возвращает отсортированный список имён команд
func (s *Session) Commands() []string {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History возвращает копию истории команд
func (s *Session) History() []string {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	return append([]string(nil), s.history...)
}

// RunCommand выполняет строку консоли. Ни одна команда не завершает игру:
// ошибки пишутся в лог и возвращаются вызывающему.
func (s *Session) RunCommand(ctx context.Context, line string) (string, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}
	name := strings.ToLower(parts[0])

	s.cmdMu.Lock()
	s.history = append(s.history, line)
	if len(s.history) > HistoryLimit {
		s.history = s.history[len(s.history)-HistoryLimit:]
	}
	fn, ok := s.commands[name]
	s.cmdMu.Unlock()

	var (
		out string
		err error
	)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		s.metrics.Command("unknown")
	} else {
		out, err = fn(ctx, s, parts[1:])
		s.metrics.Command(name)
	}

	if err != nil {
		logging.Warn("Команда %q: %v", line, err)
	} else if out != "" {
		logging.Info("%s", out)
	}
	s.events.PublishCommandExecuted(ctx, line, err)
	return out, err
}

func (s *Session) registerBuiltins() {
	s.commands = map[string]CommandFunc{
		"/tp":         cmdTeleport,
		"/screenshot": cmdScreenshot,
		"/fly":        cmdFly,
		"/select":     cmdSelect,
		"/save":       cmdSave,
		"/load":       cmdLoad,
		"/stats":      cmdStats,
		"/help":       cmdHelp,
	}
}

// /tp x y z, лишние аргументы игнорируются
func cmdTeleport(_ context.Context, s *Session, args []string) (string, error) {
	if len(args) < 3 {
		return "", ErrInvalidArgs
	}
	var coords [3]float64
	for i := range coords {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		coords[i] = v
	}

	s.Teleport(vec.Vec3Float{X: coords[0], Y: coords[1], Z: coords[2]})
	return fmt.Sprintf("Teleported to %v", args[:3]), nil
}

func cmdScreenshot(_ context.Context, s *Session, _ []string) (string, error) {
	name, err := s.screenshotter.Capture(s.PlayerSnapshot())
	if err != nil {
		return "", fmt.Errorf("снимок: %w", err)
	}
	return fmt.Sprintf("Screenshot saved as %s", name), nil
}

func cmdFly(_ context.Context, s *Session, _ []string) (string, error) {
	if s.ToggleFly() {
		return "Полёт включён", nil
	}
	return "Полёт выключен", nil
}

// /select n, ячейки нумеруются с 1 как клавиши панели
func cmdSelect(_ context.Context, s *Session, args []string) (string, error) {
	if len(args) < 1 {
		return "", ErrInvalidArgs
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if !s.SelectSlot(n - 1) {
		return "", fmt.Errorf("%w: ячейка %d вне панели", ErrInvalidArgs, n)
	}
	return fmt.Sprintf("Выбран блок %s", s.PlayerSnapshot().Block), nil
}

func cmdSave(ctx context.Context, s *Session, _ []string) (string, error) {
	if err := s.SaveWorld(ctx); err != nil {
		return "", err
	}
	return "Мир сохранён", nil
}

func cmdLoad(ctx context.Context, s *Session, _ []string) (string, error) {
	if err := s.LoadWorld(ctx); err != nil {
		return "", err
	}
	return "Мир загружен", nil
}

func cmdStats(_ context.Context, s *Session, _ []string) (string, error) {
	stats, err := metrics.ProcessStats()
	if err != nil {
		logging.Debug("Неполная статистика процесса: %v", err)
	}
	return fmt.Sprintf("%s chunks=%d blocks=%d pending=%d loader_dropped=%d",
		stats, s.manager.ChunkCount(), s.manager.Store().Len(),
		s.manager.PendingCount(), s.loader.Dropped()), nil
}

func cmdHelp(_ context.Context, s *Session, _ []string) (string, error) {
	return strings.Join(s.Commands(), " "), nil
}
