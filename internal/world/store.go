package world

import (
	"sync"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Store — разреженное хранилище блоков мира: координата блока -> тип.
// Отсутствие ключа означает воздух: нет коллизии, нечего рисовать.
type Store struct {
	mu     sync.RWMutex
	blocks map[vec.Vec3]block.Type
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{blocks: make(map[vec.Vec3]block.Type)}
}

// Get возвращает тип блока по координате
func (s *Store) Get(pos vec.Vec3) (block.Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.blocks[pos]
	return t, ok
}

// Has проверяет, занята ли координата
func (s *Store) Has(pos vec.Vec3) bool {
	_, ok := s.Get(pos)
	return ok
}

// IsSolid проверяет, есть ли в координате блок с коллизией
func (s *Store) IsSolid(pos vec.Vec3) bool {
	t, ok := s.Get(pos)
	return ok && block.IsSolid(t)
}

// Set устанавливает блок, перезаписывая прежний
func (s *Store) Set(pos vec.Vec3, t block.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[pos] = t
}

// Remove удаляет блок и возвращает его тип
func (s *Store) Remove(pos vec.Vec3) (block.Type, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.blocks[pos]
	if ok {
		delete(s.blocks, pos)
	}
	return t, ok
}

// Merge добавляет набор блоков под одной блокировкой записи.
// Читатели видят либо весь набор, либо ничего из него.
func (s *Store) Merge(blocks map[vec.Vec3]block.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pos, t := range blocks {
		s.blocks[pos] = t
	}
}

// Reset полностью заменяет содержимое хранилища (загрузка мира)
func (s *Store) Reset(blocks map[vec.Vec3]block.Type) {
	fresh := make(map[vec.Vec3]block.Type, len(blocks))
	for pos, t := range blocks {
		fresh[pos] = t
	}

	s.mu.Lock()
	s.blocks = fresh
	s.mu.Unlock()
}

// Len возвращает количество блоков
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

// Snapshot возвращает копию всех блоков
func (s *Store) Snapshot() map[vec.Vec3]block.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[vec.Vec3]block.Type, len(s.blocks))
	for pos, t := range s.blocks {
		result[pos] = t
	}
	return result
}

// ChunkBlocks возвращает копию блоков, лежащих в площади чанка
func (s *Store) ChunkBlocks(coords vec.Vec2) map[vec.Vec3]block.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[vec.Vec3]block.Type)
	for pos, t := range s.blocks {
		if coords.Contains(pos.X, pos.Z) {
			result[pos] = t
		}
	}
	return result
}
