package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/session"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func TestParseKeys(t *testing.T) {
	assert.Equal(t, physics.Input{Forward: true, Left: true, Jump: true}, parseKeys("WAj"))
	assert.Equal(t, physics.Input{}, parseKeys(""))
	assert.Equal(t, physics.Input{Back: true, Descend: true, Sprint: true}, parseKeys("s c r"))
}

func TestHandleLine(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "world.json")
	sess, err := session.New(context.Background(), session.Options{Config: cfg})
	require.NoError(t, err)
	defer sess.Close()

	ctx := context.Background()
	in := handleLine(ctx, sess, "move w d", physics.Input{})
	assert.Equal(t, physics.Input{Forward: true, Right: true}, in)

	in = handleLine(ctx, sess, "look 100 -50", in)
	assert.Equal(t, physics.Input{Forward: true, Right: true}, in, "look не меняет клавиши")
	snap := sess.PlayerSnapshot()
	assert.InDelta(t, 20.0, snap.Player.Yaw, 1e-9)
	assert.InDelta(t, -10.0, snap.Player.Pitch, 1e-9)

	handleLine(ctx, sess, "4", in)
	assert.Equal(t, block.Wood, sess.PlayerSnapshot().Block)

	handleLine(ctx, sess, "/tp 1 2 3", in)
	assert.Equal(t, 2.0, sess.PlayerSnapshot().Player.Position.Y)

	assert.Equal(t, physics.Input{}, handleLine(ctx, sess, "move", in))
}
