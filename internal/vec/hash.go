package vec

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 смешивает сид и пару координат в 64-битное значение.
// Используется для получения собственного сида каждого чанка.
func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(x)
	uz := uint64(z)
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
