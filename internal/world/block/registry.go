package block

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Behavior)
)

// Type представляет тип блока. Строковый идентификатор, набор типов расширяем.
type Type string

// Базовые типы блоков
const (
	Grass  Type = "grass"
	Dirt   Type = "dirt"
	Stone  Type = "stone"
	Sand   Type = "sand"
	Wood   Type = "wood"
	Leaves Type = "leaves"
	Water  Type = "water"
)

// Register добавляет поведение блока в регистр
func Register(behavior Behavior) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[behavior.Type] = behavior
}

// Get возвращает поведение для указанного типа
func Get(t Type) (Behavior, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	behavior, exists := registry[t]
	return behavior, exists
}

// IsValid проверяет, зарегистрирован ли тип блока
func IsValid(t Type) bool {
	_, exists := Get(t)
	return exists
}

// IsSolid сообщает, даёт ли блок коллизию.
// Незарегистрированные типы считаются твёрдыми: любой блок в мире — препятствие.
func IsSolid(t Type) bool {
	behavior, exists := Get(t)
	if !exists {
		return true
	}
	return behavior.Solid
}

// Types возвращает отсортированный список зарегистрированных типов
func Types() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
