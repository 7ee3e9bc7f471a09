package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/session"
)

// handleLine разбирает строку консоли без окна:
//
//	/команда ...   — команда сессии (/tp, /fly, /save, ...)
//	move wasd jcr  — удерживаемые клавиши: w a s d, j прыжок, c спуск, r бег; пусто — стоп
//	look dx dy     — смещение мыши
//	break | place  — действие луча
//	1..5           — выбор ячейки панели
//
// Возвращает новое состояние клавиш.
func handleLine(ctx context.Context, sess *session.Session, line string, input physics.Input) physics.Input {
	line = strings.TrimSpace(line)
	if line == "" {
		return input
	}

	if strings.HasPrefix(line, "/") {
		if _, err := sess.RunCommand(ctx, line); err != nil {
			logging.Debug("Команда не выполнена: %v", err)
		}
		return input
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "move":
		return parseKeys(strings.Join(fields[1:], ""))
	case "look":
		if len(fields) != 3 {
			logging.Warn("look: ожидалось look dx dy")
			return input
		}
		dx, errX := strconv.ParseFloat(fields[1], 64)
		dy, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			logging.Warn("look: некорректное смещение %q", line)
			return input
		}
		sess.Look(dx, dy)
	case "break":
		logEdit(sess.Edit(ctx, interaction.ActionBreak))
	case "place":
		logEdit(sess.Edit(ctx, interaction.ActionPlace))
	default:
		if n, err := strconv.Atoi(fields[0]); err == nil {
			if !sess.SelectSlot(n - 1) {
				logging.Warn("Ячейка %d вне панели", n)
			}
			return input
		}
		logging.Warn("Неизвестный ввод %q", line)
	}
	return input
}

func parseKeys(keys string) physics.Input {
	var in physics.Input
	for _, k := range strings.ToLower(keys) {
		switch k {
		case 'w':
			in.Forward = true
		case 's':
			in.Back = true
		case 'a':
			in.Left = true
		case 'd':
			in.Right = true
		case 'j':
			in.Jump = true
		case 'c':
			in.Descend = true
		case 'r':
			in.Sprint = true
		}
	}
	return in
}

func logEdit(result *interaction.EditResult) {
	if result == nil {
		logging.Info("Нет блока в пределах досягаемости")
		return
	}
	logging.Info("%s %s в %v", result.Name, result.Type, result.Pos)
}
