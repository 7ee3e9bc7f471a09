package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

const blockKeyPrefix = "block:"

// BadgerWorldStorage хранит мир в BadgerDB, по ключу на блок
type BadgerWorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerWorldStorage открывает (или создаёт) базу в каталоге dbPath
func NewBadgerWorldStorage(dbPath string) (*BadgerWorldStorage, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerWorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

func blockKey(pos vec.Vec3) []byte {
	return []byte(blockKeyPrefix + pos.String())
}

// Save заменяет содержимое базы переданным миром. Сначала пишутся новые
// блоки, затем удаляются устаревшие ключи, поэтому сбой записи не стирает
// прошлое сохранение.
func (ws *BadgerWorldStorage) Save(ctx context.Context, blocks map[vec.Vec3]block.Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	if !ws.isReady {
		return ErrClosed
	}

	// WriteBatch сам разбивает запись на транзакции допустимого размера
	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()
	for pos, bt := range blocks {
		if err := wb.Set(blockKey(pos), []byte(bt)); err != nil {
			return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	stale, err := ws.staleKeys(blocks)
	if err != nil {
		return fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	del := ws.db.NewWriteBatch()
	defer del.Cancel()
	for _, key := range stale {
		if err := del.Delete(key); err != nil {
			return fmt.Errorf("ошибка очистки BadgerDB: %w", err)
		}
	}
	if err := del.Flush(); err != nil {
		return fmt.Errorf("ошибка очистки BadgerDB: %w", err)
	}
	return nil
}

// staleKeys возвращает ключи блоков, которых нет в новом сохранении
func (ws *BadgerWorldStorage) staleKeys(blocks map[vec.Vec3]block.Type) ([][]byte, error) {
	var stale [][]byte
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(blockKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			pos, err := vec.ParseVec3(strings.TrimPrefix(string(key), blockKeyPrefix))
			if err == nil {
				if _, keep := blocks[pos]; keep {
					continue
				}
			}
			stale = append(stale, key)
		}
		return nil
	})
	return stale, err
}

// Load читает все блоки. Нечитаемый ключ даёт пустой мир и ErrCorruptSave.
func (ws *BadgerWorldStorage) Load(ctx context.Context) (map[vec.Vec3]block.Type, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	if !ws.isReady {
		return map[vec.Vec3]block.Type{}, ErrClosed
	}

	blocks := make(map[vec.Vec3]block.Type)
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(blockKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			pos, err := vec.ParseVec3(strings.TrimPrefix(string(item.Key()), blockKeyPrefix))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptSave, err)
			}
			if err := item.Value(func(val []byte) error {
				blocks[pos] = block.Type(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return map[vec.Vec3]block.Type{}, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return blocks, nil
}

// Close закрывает базу
func (ws *BadgerWorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	return ws.db.Close()
}
