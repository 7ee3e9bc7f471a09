package interaction

import (
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// MaxHP — здоровье игрока при появлении
const MaxHP = 20

// Inventory — панель быстрого доступа с выбранным слотом
type Inventory struct {
	Slots    []block.Type `json:"slots"`
	Selected int          `json:"selected"`
}

// NewInventory создаёт панель с набором блоков по умолчанию
func NewInventory() *Inventory {
	slots := make([]block.Type, len(block.DefaultHotbar))
	copy(slots, block.DefaultHotbar)
	return &Inventory{Slots: slots}
}

// Select выбирает слот. Индекс вне диапазона игнорируется.
func (inv *Inventory) Select(index int) bool {
	if index < 0 || index >= len(inv.Slots) {
		return false
	}
	inv.Selected = index
	return true
}

// Current возвращает тип блока в выбранном слоте
func (inv *Inventory) Current() block.Type {
	return inv.Slots[inv.Selected]
}
