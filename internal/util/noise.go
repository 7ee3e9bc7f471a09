package util

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
)

// Режимы функции высоты
const (
	HeightModeSine   = "sine"
	HeightModePerlin = "perlin"
)

// HeightFunc отображает колонну (x, z) в высоту поверхности.
// Реализации детерминированы при фиксированном сиде.
type HeightFunc interface {
	Height(x, z int) int
}

// SineHeight — сумма трёх синусоид со сдвигом фазы на сид
type SineHeight struct {
	Seed int64
}

// Height возвращает высоту поверхности, дробная часть отбрасывается к нулю
func (s SineHeight) Height(x, z int) int {
	phase := float64(s.Seed)
	h := math.Sin(float64(x)*0.1+phase) * 2
	h += math.Cos(float64(z)*0.15+phase) * 2
	h += math.Sin(float64(x+z)*0.05) * 4 // крупные холмы
	return int(h)
}

// PerlinHeight строит рельеф на шуме Перлина
type PerlinHeight struct {
	noise     *perlin.Perlin
	Scale     float64 // Масштаб координат шума
	Amplitude float64 // Амплитуда высоты в блоках
}

// NewPerlinHeight создаёт функцию высоты на шуме Перлина с указанным сидом
func NewPerlinHeight(seed int64) *PerlinHeight {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &PerlinHeight{
		noise:     perlin.NewPerlin(alpha, beta, n, seed),
		Scale:     0.05,
		Amplitude: 8,
	}
}

// Height возвращает высоту поверхности в диапазоне примерно [-Amplitude, Amplitude]
func (p *PerlinHeight) Height(x, z int) int {
	v := p.noise.Noise2D(float64(x)*p.Scale, float64(z)*p.Scale)
	return int(v * p.Amplitude)
}

// NewHeightFunc выбирает функцию высоты по режиму из конфигурации
func NewHeightFunc(mode string, seed int64) (HeightFunc, error) {
	switch mode {
	case "", HeightModeSine:
		return SineHeight{Seed: seed}, nil
	case HeightModePerlin:
		return NewPerlinHeight(seed), nil
	default:
		return nil, fmt.Errorf("неизвестный режим высоты %q", mode)
	}
}
