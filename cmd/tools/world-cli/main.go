package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/storage"
	"github.com/annel0/voxel-sandbox/internal/util"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func main() {
	var (
		command    = flag.String("cmd", "stats", "Command: chunk, stats, convert")
		seed       = flag.Int64("seed", 888, "World seed (chunk)")
		heightMode = flag.String("height", util.HeightModeSine, "Height mode: sine, perlin (chunk)")
		cx         = flag.Int("x", 0, "Chunk X (chunk)")
		cz         = flag.Int("z", 0, "Chunk Z (chunk)")
		backend    = flag.String("backend", config.BackendFile, "Source backend: file, badger, sqlite")
		path       = flag.String("path", "world.json", "Source save path")
		toBackend  = flag.String("to-backend", config.BackendFile, "Target backend (convert)")
		toPath     = flag.String("to", "", "Target save path (convert)")
	)
	flag.Parse()

	ctx := context.Background()
	source := config.StorageConfig{Backend: *backend, Path: *path}

	var err error
	switch *command {
	case "chunk":
		err = dumpChunk(*seed, *heightMode, vec.Vec2{X: *cx, Z: *cz})
	case "stats":
		err = showStats(ctx, source)
	case "convert":
		err = convert(ctx, source, config.StorageConfig{Backend: *toBackend, Path: *toPath})
	default:
		err = fmt.Errorf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// dumpChunk печатает сгенерированный чанк в формате файла сохранения
func dumpChunk(seed int64, mode string, coords vec.Vec2) error {
	height, err := util.NewHeightFunc(mode, seed)
	if err != nil {
		return err
	}
	chunk := world.NewWorldGenerator(seed, height).GenerateChunk(coords)

	out := struct {
		Biome    world.Biome           `json:"biome"`
		Blocks   map[string]block.Type `json:"blocks"`
		Overflow int                   `json:"overflow"`
	}{Biome: chunk.Biome, Blocks: make(map[string]block.Type, len(chunk.Blocks))}
	for pos, bt := range chunk.Blocks {
		out.Blocks[pos.String()] = bt
	}
	for _, edits := range chunk.Overflow {
		out.Overflow += len(edits)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// showStats печатает число блоков сохранения по типам
func showStats(ctx context.Context, source config.StorageConfig) error {
	blocks, err := load(ctx, source)
	if err != nil {
		return err
	}

	counts := make(map[block.Type]int)
	chunks := make(map[vec.Vec2]struct{})
	for pos, bt := range blocks {
		counts[bt]++
		chunks[pos.ChunkCoords()] = struct{}{}
	}

	types := make([]string, 0, len(counts))
	for bt := range counts {
		types = append(types, string(bt))
	}
	sort.Strings(types)

	fmt.Printf("📊 %s (%s): %d blocks in %d chunks\n", source.Path, source.Backend, len(blocks), len(chunks))
	for _, bt := range types {
		fmt.Printf("   %-8s %d\n", bt, counts[block.Type(bt)])
	}
	return nil
}

// convert переносит сохранение между бэкендами (например world.json -> world.json.zst)
func convert(ctx context.Context, source, target config.StorageConfig) error {
	if target.Path == "" {
		return fmt.Errorf("target path is required")
	}
	blocks, err := load(ctx, source)
	if err != nil {
		return err
	}

	dst, err := storage.OpenWorld(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.Save(ctx, blocks); err != nil {
		return err
	}
	fmt.Printf("✅ %d blocks: %s (%s) -> %s (%s)\n", len(blocks), source.Path, source.Backend, target.Path, target.Backend)
	return nil
}

func load(ctx context.Context, source config.StorageConfig) (map[vec.Vec3]block.Type, error) {
	src, err := storage.OpenWorld(source)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Load(ctx)
}
