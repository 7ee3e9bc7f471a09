package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Screenshotter сохраняет снимок состояния и возвращает имя файла
type Screenshotter interface {
	Capture(snapshot Snapshot) (string, error)
}

// ScreenshotFunc позволяет использовать функцию как Screenshotter
type ScreenshotFunc func(snapshot Snapshot) (string, error)

func (f ScreenshotFunc) Capture(snapshot Snapshot) (string, error) {
	return f(snapshot)
}

// FileScreenshotter пишет состояние игрока в capture_<время>.txt.
// Без окна отрисовки это текстовый дамп вместо изображения.
type FileScreenshotter struct {
	Dir string
}

func (fs FileScreenshotter) Capture(snapshot Snapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("сериализация снимка: %w", err)
	}

	name := filepath.Join(fs.Dir, fmt.Sprintf("capture_%s.txt", timeNow().Format("20060102-150405")))
	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return name, nil
}
