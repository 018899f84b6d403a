package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ignatzorin/report-accident/internal/logger"
)

// PoolOptions параметры пула соединений.
type PoolOptions struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// DefaultPool пул для sandbox сервера: нагрузка небольшая.
var DefaultPool = PoolOptions{MaxOpen: 20, MaxIdle: 5, MaxLifetime: 5 * time.Minute}

// NewPostgres подключается к PostgreSQL и настраивает пул.
func NewPostgres(ctx context.Context, dsn string, pool PoolOptions) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(pool.MaxOpen)
	conn.SetMaxIdleConns(pool.MaxIdle)
	conn.SetConnMaxLifetime(pool.MaxLifetime)

	return conn, nil
}

// RunMigrations применяет ещё не выполненные .sql файлы из каталога
// в лексикографическом порядке. Возвращает имена применённых файлов.
func RunMigrations(ctx context.Context, conn *sqlx.DB, dir string) ([]string, error) {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("postgres: не удалось создать schema_migrations: %w", err)
	}

	files, err := MigrationFiles(dir)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		var count int
		if err := conn.GetContext(ctx, &count, `SELECT COUNT(*) FROM schema_migrations WHERE name = $1`, name); err != nil {
			return applied, fmt.Errorf("postgres: не удалось проверить миграцию %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		if err := applyMigration(ctx, conn, dir, name); err != nil {
			return applied, err
		}
		logger.Log.WithField("migration", name).Info("postgres: миграция применена")
		applied = append(applied, name)
	}

	return applied, nil
}

// MigrationFiles возвращает отсортированные имена .sql файлов каталога.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось прочитать каталог миграций: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func applyMigration(ctx context.Context, conn *sqlx.DB, dir, name string) error {
	body, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("postgres: не удалось прочитать миграцию %s: %w", name, err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: не удалось начать транзакцию для %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("postgres: не удалось выполнить миграцию %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("postgres: не удалось отметить миграцию %s: %w", name, err)
	}

	return tx.Commit()
}
