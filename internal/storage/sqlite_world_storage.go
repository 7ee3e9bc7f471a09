package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// SQLiteWorldStorage хранит мир в таблице blocks(x,y,z,type)
type SQLiteWorldStorage struct {
	db *sql.DB
}

// NewSQLiteWorldStorage открывает базу и создаёт схему
func NewSQLiteWorldStorage(path string) (*SQLiteWorldStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite %s: %w", path, err)
	}
	// Один писатель
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS blocks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			type TEXT NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("инициализация sqlite: %w", err)
		}
	}

	return &SQLiteWorldStorage{db: db}, nil
}

// Save заменяет содержимое таблицы в одной транзакции
func (s *SQLiteWorldStorage) Save(ctx context.Context, blocks map[vec.Vec3]block.Type) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
		return fmt.Errorf("очистка blocks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO blocks(x,y,z,type) VALUES(?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("подготовка вставки: %w", err)
	}
	defer stmt.Close()

	for pos, bt := range blocks {
		if _, err := stmt.ExecContext(ctx, pos.X, pos.Y, pos.Z, string(bt)); err != nil {
			return fmt.Errorf("вставка %s: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	return nil
}

// Load читает все блоки
func (s *SQLiteWorldStorage) Load(ctx context.Context) (map[vec.Vec3]block.Type, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT x, y, z, type FROM blocks`)
	if err != nil {
		return map[vec.Vec3]block.Type{}, fmt.Errorf("чтение blocks: %w", err)
	}
	defer rows.Close()

	blocks := make(map[vec.Vec3]block.Type)
	for rows.Next() {
		var pos vec.Vec3
		var bt string
		if err := rows.Scan(&pos.X, &pos.Y, &pos.Z, &bt); err != nil {
			return map[vec.Vec3]block.Type{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
		}
		blocks[pos] = block.Type(bt)
	}
	if err := rows.Err(); err != nil {
		return map[vec.Vec3]block.Type{}, fmt.Errorf("чтение blocks: %w", err)
	}
	return blocks, nil
}

// Close закрывает соединение
func (s *SQLiteWorldStorage) Close() error {
	return s.db.Close()
}
