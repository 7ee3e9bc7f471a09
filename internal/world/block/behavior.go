package block

// Behavior описывает свойства типа блока
type Behavior struct {
	Type  Type   // Идентификатор типа
	Name  string // Отображаемое имя
	Solid bool   // Даёт ли блок коллизию
}

// DefaultHotbar — порядок блоков в панели быстрого доступа
var DefaultHotbar = []Type{Grass, Dirt, Stone, Wood, Leaves}

// Регистрируем базовые блоки при импорте пакета
func init() {
	Register(Behavior{Type: Grass, Name: "Grass", Solid: true})
	Register(Behavior{Type: Dirt, Name: "Dirt", Solid: true})
	Register(Behavior{Type: Stone, Name: "Stone", Solid: true})
	Register(Behavior{Type: Sand, Name: "Sand", Solid: true})
	Register(Behavior{Type: Wood, Name: "Wood", Solid: true})
	Register(Behavior{Type: Leaves, Name: "Leaves", Solid: true})
	Register(Behavior{Type: Water, Name: "Water", Solid: false})
}
