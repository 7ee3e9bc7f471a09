package world

import "math"

// DayLength — длина суток в единицах игрового времени
const DayLength = 60.0

// CloudSpeed — скорость смещения облаков
const CloudSpeed = 0.5

// RGB представляет цвет неба
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	DaySky   = RGB{R: 135, G: 206, B: 235}
	NightSky = RGB{R: 20, G: 20, B: 40}
)

// Environment — состояние окружения в момент времени
type Environment struct {
	SkyColor    RGB     `json:"sky_color"`
	CloudOffset float64 `json:"cloud_offset"`
	DayProgress float64 `json:"day_progress"`
}

// EnvironmentState вычисляет цвет неба и смещение облаков для времени t.
// Прогресс суток всегда неотрицательный, в том числе для t < 0.
func EnvironmentState(t float64) Environment {
	progress := math.Mod(t, DayLength)
	if progress < 0 {
		progress += DayLength
	}
	progress /= DayLength

	sky := NightSky
	if progress > 0.25 && progress < 0.75 {
		sky = DaySky
	}

	return Environment{
		SkyColor:    sky,
		CloudOffset: t * CloudSpeed,
		DayProgress: progress,
	}
}
