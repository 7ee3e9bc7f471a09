package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkOf_NegativeCoords(t *testing.T) {
	cases := []struct {
		x, z int
		want Vec2
	}{
		{0, 0, Vec2{0, 0}},
		{7, 7, Vec2{0, 0}},
		{8, 0, Vec2{1, 0}},
		{-1, -1, Vec2{-1, -1}},
		{-8, -9, Vec2{-1, -2}},
		{-9, 15, Vec2{-2, 1}},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ChunkOf(c.x, c.z), "колонна (%d,%d)", c.x, c.z)
		assert.True(t, c.want.Contains(c.x, c.z), "чанк %v должен содержать (%d,%d)", c.want, c.x, c.z)
	}
}

func TestVec3_StringRoundTrip(t *testing.T) {
	v := Vec3{X: -3, Y: 12, Z: 7}
	assert.Equal(t, "-3,12,7", v.String())

	parsed, err := ParseVec3(v.String())
	require.NoError(t, err)
	assert.Equal(t, v, parsed)

	_, err = ParseVec3("1,2")
	assert.Error(t, err)
	_, err = ParseVec3("1,a,2")
	assert.Error(t, err)
}

func TestVec3Float_RoundHalfToEven(t *testing.T) {
	assert.Equal(t, Vec3{X: 2, Y: 0, Z: -2}, Vec3Float{X: 2.5, Y: 0.5, Z: -2.5}.Round())
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: -3}, Vec3Float{X: 2.6, Y: 1.49, Z: -2.51}.Round())
}

func TestHash2_Deterministic(t *testing.T) {
	assert.Equal(t, Hash2(888, 1, -1), Hash2(888, 1, -1))
	assert.NotEqual(t, Hash2(888, 1, 0), Hash2(888, 0, 1))
	assert.NotEqual(t, Hash2(888, 0, 0), Hash2(889, 0, 0))
}

func TestHash2_DistinguishesDistantChunks(t *testing.T) {
	const far = 1 << 32
	assert.NotEqual(t, Hash2(888, 0, 0), Hash2(888, far, 0))
	assert.NotEqual(t, Hash2(888, 5, -3), Hash2(888, 5, -3+far))
	assert.NotEqual(t, Hash2(888, -1, 0), Hash2(888, far-1, 0))
}

func TestNeighbors(t *testing.T) {
	n := Vec2{X: 2, Z: -1}.Neighbors(1)
	assert.Len(t, n, 9)
	assert.Contains(t, n, Vec2{X: 1, Z: -2})
	assert.Contains(t, n, Vec2{X: 3, Z: 0})
}
