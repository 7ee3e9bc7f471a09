package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// WorldPersister сохраняет и загружает полное содержимое мира.
// Каждое сохранение заменяет предыдущее целиком.
type WorldPersister interface {
	Save(ctx context.Context, blocks map[vec.Vec3]block.Type) error
	Load(ctx context.Context) (map[vec.Vec3]block.Type, error)
	Close() error
}

var (
	// ErrCorruptSave возвращается вместе с пустым миром, если сохранение не читается
	ErrCorruptSave = errors.New("повреждённое сохранение")
	// ErrClosed возвращается при обращении к закрытому хранилищу
	ErrClosed = errors.New("хранилище закрыто")
)

// encodeBlocks переводит мир в JSON-объект "x,y,z" -> тип
func encodeBlocks(blocks map[vec.Vec3]block.Type) ([]byte, error) {
	raw := make(map[string]block.Type, len(blocks))
	for pos, bt := range blocks {
		raw[pos.String()] = bt
	}
	return json.Marshal(raw)
}

// decodeBlocks разбирает JSON-объект сохранения
func decodeBlocks(r io.Reader) (map[vec.Vec3]block.Type, error) {
	var raw map[string]block.Type
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	blocks := make(map[vec.Vec3]block.Type, len(raw))
	for key, bt := range raw {
		pos, err := vec.ParseVec3(key)
		if err != nil {
			return nil, err
		}
		if bt == "" {
			return nil, fmt.Errorf("пустой тип блока в %s", key)
		}
		blocks[pos] = bt
	}
	return blocks, nil
}

// FileWorldStorage хранит мир одним JSON-файлом.
// Путь с суффиксом .zst включает сжатие zstd.
type FileWorldStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileWorldStorage создаёт файловое хранилище
func NewFileWorldStorage(path string) *FileWorldStorage {
	return &FileWorldStorage{path: path}
}

// Path возвращает путь к файлу сохранения
func (fs *FileWorldStorage) Path() string {
	return fs.path
}

func (fs *FileWorldStorage) compressed() bool {
	return strings.HasSuffix(fs.path, ".zst")
}

// Save пишет мир во временный файл и атомарно заменяет им сохранение
func (fs *FileWorldStorage) Save(ctx context.Context, blocks map[vec.Vec3]block.Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeBlocks(blocks)
	if err != nil {
		return fmt.Errorf("сериализация мира: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}

	tmp := fs.path + ".tmp"
	if err := fs.writeFile(tmp, data); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("замена %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileWorldStorage) writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !fs.compressed() {
		if _, err := f.Write(data); err != nil {
			return err
		}
		return f.Sync()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// Load читает сохранение. Отсутствующий файл даёт пустой мир без ошибки,
// нечитаемый файл даёт пустой мир и ErrCorruptSave.
func (fs *FileWorldStorage) Load(ctx context.Context) (map[vec.Vec3]block.Type, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[vec.Vec3]block.Type{}, nil
	}
	if err != nil {
		return map[vec.Vec3]block.Type{}, fmt.Errorf("открытие %s: %w", fs.path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if fs.compressed() {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return map[vec.Vec3]block.Type{}, fmt.Errorf("%w: %s: %v", ErrCorruptSave, fs.path, err)
		}
		defer dec.Close()
		r = dec
	}

	blocks, err := decodeBlocks(r)
	if err != nil {
		return map[vec.Vec3]block.Type{}, fmt.Errorf("%w: %s: %v", ErrCorruptSave, fs.path, err)
	}
	return blocks, nil
}

// Close ничего не держит открытым
func (fs *FileWorldStorage) Close() error {
	return nil
}
